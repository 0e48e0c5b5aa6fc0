package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/totegamma/rebento"
	"github.com/totegamma/rebento/internal/compiler"
	"github.com/totegamma/rebento/internal/domain"
)

func TestDraftGetReturnsFreshDraft(t *testing.T) {
	uc := NewDraftUsecase(&mockDraftRepo{drafts: map[string]*rebento.Draft{}}, &mockCompiler{}, nil)
	d, err := uc.Get(context.Background(), "addr-owner")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(d.Blocks) != 0 || d.Theme != rebento.DefaultTheme() {
		t.Fatalf("expected empty default draft, got %+v", d)
	}
}

func TestDraftUpdate(t *testing.T) {
	repo := &mockDraftRepo{drafts: map[string]*rebento.Draft{}}
	uc := NewDraftUsecase(repo, &mockCompiler{}, nil)

	_, err := uc.Update(context.Background(), "addr-owner", func(d *rebento.Draft) error {
		_, err := d.AddBlock(rebento.KindText, rebento.SizeWide)
		return err
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if len(repo.drafts["addr-owner"].Blocks) != 1 {
		t.Fatalf("expected stored draft with one block")
	}

	_, err = uc.Update(context.Background(), "addr-owner", func(d *rebento.Draft) error {
		return d.RemoveBlock("missing")
	})
	if !errors.Is(err, rebento.ErrBlockNotFound) {
		t.Fatalf("expected ErrBlockNotFound, got %v", err)
	}
}

func TestDraftPutRejectsInvalid(t *testing.T) {
	repo := &mockDraftRepo{drafts: map[string]*rebento.Draft{}}
	uc := NewDraftUsecase(repo, &mockCompiler{}, nil)

	d := rebento.NewDraft(rebento.Profile{})
	d.Blocks = []rebento.Block{{ID: "x", Kind: rebento.KindText, Size: rebento.SizeSmall}, {ID: "x", Kind: rebento.KindText, Size: rebento.SizeSmall}}
	if err := uc.Put(context.Background(), "addr-owner", d); err == nil {
		t.Fatalf("expected duplicate ids to be rejected")
	}
	if _, ok := repo.drafts["addr-owner"]; ok {
		t.Fatalf("invalid draft must not be stored")
	}
}

func TestDraftPublishOverBudget(t *testing.T) {
	comp := &mockCompiler{artifact: compiler.Artifact{Document: strings.Repeat("x", 150*1024), SizeBytes: 150 * 1024}}
	storage := newMockStorage("gw1")
	publish := NewPublishUsecase(storage, newMockCache(), nil, nil, nil, nil)
	uc := NewDraftUsecase(&mockDraftRepo{drafts: map[string]*rebento.Draft{}}, comp, publish)

	_, _, err := uc.Publish(context.Background(), "addr-owner", "alice", newSigner(t))
	if !errors.Is(err, &domain.PublishError{Reason: domain.PublishOversized}) {
		t.Fatalf("expected oversized, got %v", err)
	}
	if len(storage.uploaded) != 0 {
		t.Fatalf("nothing should be uploaded")
	}
}

func TestDraftPublish(t *testing.T) {
	comp := &mockCompiler{artifact: compiler.Artifact{Document: "<html></html>", SizeBytes: 13, WithinBudget: true}}
	publish := NewPublishUsecase(newMockStorage("gw1"), newMockCache(), nil, nil, nil, nil)
	uc := NewDraftUsecase(&mockDraftRepo{drafts: map[string]*rebento.Draft{}}, comp, publish)

	art, result, err := uc.Publish(context.Background(), "addr-owner", "Alice", newSigner(t))
	if err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if comp.calls != 1 || !art.WithinBudget || result.Username != "alice" {
		t.Fatalf("unexpected artifact %+v result %+v", art, result)
	}
}
