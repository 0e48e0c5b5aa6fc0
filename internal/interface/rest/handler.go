package rest

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/totegamma/rebento"
	"github.com/totegamma/rebento/internal/config"
	"github.com/totegamma/rebento/internal/domain"
	"github.com/totegamma/rebento/internal/present/rest/presenter"
	"github.com/totegamma/rebento/internal/usecase"
)

const defaultVersionsLimit = 20

// EventSource streams raw publish events.
type EventSource interface {
	Subscribe(ctx context.Context, channels ...string) <-chan []byte
}

type Handler struct {
	nodeInfo config.NodeInfo
	compiler usecase.ArtifactCompiler
	drafts   *usecase.DraftUsecase
	publish  *usecase.PublishUsecase
	resolve  *usecase.ResolveUsecase
	edit     *usecase.EditUsecase
	versions usecase.VersionRepository
	events   EventSource
	signer   rebento.Signer
}

// NewHandler wires the REST surface. versions and events may be nil; the
// corresponding routes then report empty results. signer is the instance
// identity used to publish and republish.
func NewHandler(
	nodeInfo config.NodeInfo,
	compiler usecase.ArtifactCompiler,
	drafts *usecase.DraftUsecase,
	publish *usecase.PublishUsecase,
	resolve *usecase.ResolveUsecase,
	edit *usecase.EditUsecase,
	versions usecase.VersionRepository,
	events EventSource,
	signer rebento.Signer,
) *Handler {
	return &Handler{
		nodeInfo: nodeInfo,
		compiler: compiler,
		drafts:   drafts,
		publish:  publish,
		resolve:  resolve,
		edit:     edit,
		versions: versions,
		events:   events,
		signer:   signer,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	if e.Renderer == nil {
		e.Renderer = NewRenderer()
	}

	e.POST("/api/compile", h.handleCompile)
	e.GET("/api/preview", h.handlePreview)
	e.POST("/api/publish", h.handlePublish)

	e.GET("/api/profiles/:username", h.handleProfile)
	e.GET("/api/profiles/:username/raw", h.handleRaw)
	e.GET("/api/profiles/:username/versions", h.handleVersions)
	e.POST("/api/profiles/:username/republish", h.handleRepublish)

	e.GET("/api/drafts/:owner", h.handleGetDraft)
	e.PUT("/api/drafts/:owner", h.handlePutDraft)
	e.POST("/api/drafts/:owner/blocks", h.handleAddBlock)
	e.PATCH("/api/drafts/:owner/blocks/:id", h.handleUpdateBlock)
	e.DELETE("/api/drafts/:owner/blocks/:id", h.handleRemoveBlock)
	e.POST("/api/drafts/:owner/blocks/:id/move", h.handleMoveBlock)
	e.POST("/api/drafts/:owner/blocks/:id/resize", h.handleResizeBlock)

	e.GET("/api/events", h.handleEvents)
	e.GET("/u/:username", h.handleViewer)
}

func requester(ctx context.Context) string {
	id, _ := ctx.Value(domain.RequesterIdCtxKey).(string)
	return id
}

// authorize admits the request only when the authenticated viewer is owner.
func authorize(c echo.Context, owner string) bool {
	viewer := requester(c.Request().Context())
	if viewer == "" {
		_ = presenter.Unauthorized(c, "authentication required")
		return false
	}
	if !rebento.IsOwner(viewer, owner) {
		_ = presenter.Forbidden(c, "not the owner")
		return false
	}
	return true
}

func etagMatches(c echo.Context, etag string) bool {
	if etag == "" {
		return false
	}
	quoted := strconv.Quote(etag)
	c.Response().Header().Set("ETag", quoted)
	for _, candidate := range strings.Split(c.Request().Header.Get("If-None-Match"), ",") {
		if strings.TrimSpace(candidate) == quoted {
			return true
		}
	}
	return false
}

func (h *Handler) handleCompile(c echo.Context) error {
	ctx := c.Request().Context()

	draft := rebento.NewDraft(rebento.Profile{})
	if err := c.Bind(draft); err != nil {
		return presenter.BadRequest(c, err)
	}
	if err := draft.Validate(); err != nil {
		return presenter.Error(c, err)
	}

	art, err := h.compiler.Compile(ctx, draft.Profile, draft.Blocks, draft.Theme)
	if err != nil {
		return presenter.InternalError(c, err)
	}
	if etagMatches(c, art.ETag) {
		return c.NoContent(http.StatusNotModified)
	}
	return presenter.OK(c, art)
}

func (h *Handler) handlePreview(c echo.Context) error {
	ctx := c.Request().Context()

	art, err := h.drafts.Compile(ctx, h.nodeInfo.Address)
	if err != nil {
		return presenter.Error(c, err)
	}
	if etagMatches(c, art.ETag) {
		return c.NoContent(http.StatusNotModified)
	}
	return c.Render(http.StatusOK, "preview", previewPage{
		Document:     art.Document,
		SizeKB:       art.SizeKB(),
		WithinBudget: art.WithinBudget,
	})
}

type publishRequest struct {
	Username string `json:"username"`
	Document string `json:"html"`
}

type publishResponse struct {
	usecase.PublishResult
	SizeBytes int `json:"sizeBytes"`
}

func (h *Handler) handlePublish(c echo.Context) error {
	ctx := c.Request().Context()

	if !authorize(c, h.nodeInfo.Address) {
		return nil
	}

	var req publishRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}
	if req.Username == "" {
		req.Username = h.nodeInfo.Username
	}
	if rebento.NormalizeUsername(req.Username) == "" {
		return presenter.BadRequestMessage(c, "username is required")
	}

	if req.Document != "" {
		result, err := h.publish.Publish(ctx, usecase.PublishInput{Document: req.Document, Username: req.Username}, h.signer)
		if err != nil {
			return presenter.Error(c, err)
		}
		return presenter.OK(c, publishResponse{PublishResult: result, SizeBytes: len(req.Document)})
	}

	art, result, err := h.drafts.Publish(ctx, h.nodeInfo.Address, req.Username, h.signer)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, publishResponse{PublishResult: result, SizeBytes: art.SizeBytes})
}

func (h *Handler) handleProfile(c echo.Context) error {
	ctx := c.Request().Context()

	resolved, err := h.resolve.Resolve(ctx, usecase.ResolveInput{
		Username: c.Param("username"),
		Viewer:   requester(ctx),
	})
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, resolved)
}

func (h *Handler) handleRaw(c echo.Context) error {
	ctx := c.Request().Context()

	resolved, err := h.resolve.Resolve(ctx, usecase.ResolveInput{Username: c.Param("username")})
	if err != nil {
		return presenter.Error(c, err)
	}
	c.Response().Header().Set("Content-Security-Policy", "sandbox allow-same-origin allow-popups allow-popups-to-escape-sandbox")
	return c.HTML(http.StatusOK, resolved.Document)
}

func (h *Handler) handleVersions(c echo.Context) error {
	ctx := c.Request().Context()

	username := rebento.NormalizeUsername(c.Param("username"))
	if username == "" {
		return presenter.BadRequestMessage(c, "invalid username")
	}

	limit := defaultVersionsLimit
	if limitStr := c.QueryParam("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n <= 0 {
			return presenter.BadRequestMessage(c, "invalid limit parameter")
		}
		limit = n
	}

	local := []rebento.PublishedVersion{}
	if h.versions != nil {
		list, err := h.versions.List(ctx, username, limit)
		if err != nil {
			return presenter.InternalError(c, err)
		}
		local = list
	}

	indexed := h.resolve.Candidates(ctx, username)
	latest, _ := usecase.PickLatest(indexed)

	return presenter.OK(c, echo.Map{
		"username": username,
		"local":    local,
		"indexed":  indexed,
		"latest":   latest,
	})
}

type republishRequest struct {
	Document string `json:"html"`
}

func (h *Handler) handleRepublish(c echo.Context) error {
	ctx := c.Request().Context()

	var req republishRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	viewer := requester(ctx)
	resolved, err := h.resolve.Resolve(ctx, usecase.ResolveInput{Username: c.Param("username"), Viewer: viewer})
	if err != nil {
		return presenter.Error(c, err)
	}
	record := rebento.PublishedVersion{
		ContentAddress: resolved.ContentAddress,
		Owner:          resolved.Owner,
		Username:       resolved.Username,
		Version:        resolved.Version,
	}

	wallet := walletFromContext(ctx)
	if err := h.edit.CheckPermission(ctx, wallet, record.Owner); err != nil {
		return presenter.Error(c, err)
	}

	document := req.Document
	if document == "" {
		art, err := h.drafts.Compile(ctx, viewer)
		if err != nil {
			return presenter.Error(c, err)
		}
		document = art.Document
	}

	result, err := h.edit.Republish(ctx, wallet, record, document, h.signer)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, publishResponse{PublishResult: result, SizeBytes: len(document)})
}

func (h *Handler) handleGetDraft(c echo.Context) error {
	owner := c.Param("owner")
	if !authorize(c, owner) {
		return nil
	}

	draft, err := h.drafts.Get(c.Request().Context(), owner)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, draft)
}

func (h *Handler) handlePutDraft(c echo.Context) error {
	owner := c.Param("owner")
	if !authorize(c, owner) {
		return nil
	}

	draft := rebento.NewDraft(rebento.Profile{})
	if err := c.Bind(draft); err != nil {
		return presenter.BadRequest(c, err)
	}
	if err := h.drafts.Put(c.Request().Context(), owner, draft); err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, draft)
}

type addBlockRequest struct {
	Kind rebento.BlockKind `json:"type"`
	Size rebento.BlockSize `json:"size"`
}

func (h *Handler) handleAddBlock(c echo.Context) error {
	owner := c.Param("owner")
	if !authorize(c, owner) {
		return nil
	}

	var req addBlockRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	var block rebento.Block
	_, err := h.drafts.Update(c.Request().Context(), owner, func(d *rebento.Draft) error {
		var err error
		block, err = d.AddBlock(req.Kind, req.Size)
		return err
	})
	if err != nil {
		return presenter.Error(c, err)
	}
	return c.JSON(http.StatusCreated, block)
}

func (h *Handler) handleUpdateBlock(c echo.Context) error {
	owner := c.Param("owner")
	if !authorize(c, owner) {
		return nil
	}

	var patch rebento.Block
	if err := c.Bind(&patch); err != nil {
		return presenter.BadRequest(c, err)
	}
	id := c.Param("id")

	draft, err := h.drafts.Update(c.Request().Context(), owner, func(d *rebento.Draft) error {
		return d.UpdateBlock(id, patch)
	})
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, draft)
}

func (h *Handler) handleRemoveBlock(c echo.Context) error {
	owner := c.Param("owner")
	if !authorize(c, owner) {
		return nil
	}
	id := c.Param("id")

	draft, err := h.drafts.Update(c.Request().Context(), owner, func(d *rebento.Draft) error {
		return d.RemoveBlock(id)
	})
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, draft)
}

type moveBlockRequest struct {
	Index int `json:"index"`
}

func (h *Handler) handleMoveBlock(c echo.Context) error {
	owner := c.Param("owner")
	if !authorize(c, owner) {
		return nil
	}

	var req moveBlockRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}
	id := c.Param("id")

	draft, err := h.drafts.Update(c.Request().Context(), owner, func(d *rebento.Draft) error {
		return d.MoveBlock(id, req.Index)
	})
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, draft)
}

type resizeBlockRequest struct {
	Size rebento.BlockSize `json:"size"`
}

func (h *Handler) handleResizeBlock(c echo.Context) error {
	owner := c.Param("owner")
	if !authorize(c, owner) {
		return nil
	}

	var req resizeBlockRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}
	id := c.Param("id")

	draft, err := h.drafts.Update(c.Request().Context(), owner, func(d *rebento.Draft) error {
		return d.ResizeBlock(id, req.Size)
	})
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, draft)
}

func (h *Handler) handleViewer(c echo.Context) error {
	ctx := c.Request().Context()
	username := rebento.NormalizeUsername(c.Param("username"))

	resolved, err := h.resolve.Resolve(ctx, usecase.ResolveInput{Username: username, Viewer: requester(ctx)})
	if err != nil {
		status, reason := presenter.Classify(err)
		return c.Render(status, "missing", missingPage{
			Username:    username,
			Unreachable: reason == string(domain.NotFoundUnreachable),
		})
	}

	return c.Render(http.StatusOK, "viewer", viewerPage{
		Username: resolved.Username,
		Document: resolved.Document,
		Owner:    resolved.Owner,
		IsOwner:  resolved.IsOwner,
		Version:  resolved.Version,
	})
}
