package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/totegamma/rebento"
	"github.com/totegamma/rebento/client"
)

func newGateway(urls []string, ingest string) *StorageGateway {
	return NewStorageGateway(client.New(), urls, ingest, WithBodyCache(NewBodyCache(nil)))
}

func signedItem(t *testing.T) ([]byte, *rebento.KeySigner) {
	t.Helper()
	signer, err := rebento.GenerateKeySigner()
	if err != nil {
		t.Fatalf("keygen failed: %v", err)
	}
	raw, err := rebento.SignDataItem(context.Background(), signer, rebento.DataItem{
		Data: []byte("<p>hi</p>"),
		Tags: rebento.PublishTags("alice", "1", signer.Address()),
	})
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	return raw, signer
}

func TestUploadSendsBinaryItem(t *testing.T) {
	raw, signer := signedItem(t)

	var got rebento.DataItem
	var contentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		item, err := rebento.VerifyDataItem(body)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		got = item
		io.WriteString(w, `{"id":"`+item.ID()+`"}`)
	}))
	defer srv.Close()

	receipt, err := newGateway(nil, srv.URL).Upload(context.Background(), raw)
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if contentType != "application/octet-stream" {
		t.Fatalf("unexpected content type %q", contentType)
	}
	if !receipt.Accepted() || receipt.ID != got.ID() {
		t.Fatalf("unexpected receipt %+v", receipt)
	}
	owner, _ := rebento.TagValue(got.Tags, rebento.TagOwner)
	if got.OwnerAddress() != signer.Address() || owner != signer.Address() {
		t.Fatalf("owner tag %s and key %s should both be %s", owner, got.OwnerAddress(), signer.Address())
	}
}

func TestUploadReadsIdentifierInOrder(t *testing.T) {
	raw, _ := signedItem(t)
	cases := []struct {
		body string
		want string
	}{
		{`{"bundlerId":"b","id":"i","txId":"t"}`, "b"},
		{`{"id":"i","txId":"t"}`, "i"},
		{`{"txId":"t"}`, "t"},
		{`{}`, ""},
	}
	for _, c := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			if _, err := rebento.ParseDataItem(body); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			io.WriteString(w, c.body)
		}))

		g := newGateway(nil, srv.URL)
		receipt, err := g.Upload(context.Background(), raw)
		srv.Close()
		if err != nil {
			t.Fatalf("upload failed: %v", err)
		}
		if !receipt.Accepted() || receipt.ID != c.want {
			t.Fatalf("body %s: expected id %q got %+v", c.body, c.want, receipt)
		}
	}
}

func TestUploadRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
	}))
	defer srv.Close()

	raw, _ := signedItem(t)
	receipt, err := newGateway(nil, srv.URL).Upload(context.Background(), raw)
	if err != nil {
		t.Fatalf("expected receipt, got error %v", err)
	}
	if receipt.Accepted() || receipt.StatusCode != http.StatusPaymentRequired {
		t.Fatalf("unexpected receipt %+v", receipt)
	}
}

func TestUploadTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	if _, err := newGateway(nil, url).Upload(context.Background(), nil); err == nil {
		t.Fatalf("expected transport error")
	}
}

func TestQueryParsesEdges(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/graphql" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var req graphqlRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Variables["username"] != "alice" {
			io.WriteString(w, `{"data":{"transactions":{"edges":[]}}}`)
			return
		}
		io.WriteString(w, `{"data":{"transactions":{"edges":[
			{"node":{"id":"tx1","tags":[{"name":"Version","value":"100"},{"name":"Owner","value":"addr-owner"},{"name":"Username","value":"alice"}]}},
			{"node":{"id":"tx2","tags":[{"name":"Version","value":"garbage"}]}},
			{"node":{"id":"","tags":[]}}
		]}}}`)
	}))
	defer srv.Close()

	g := newGateway([]string{srv.URL}, "")
	got, err := g.Query(context.Background(), srv.URL, "alice")
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %+v", got)
	}
	if got[0].ContentAddress != "tx1" || got[0].Version != 100 || got[0].Owner != "addr-owner" {
		t.Fatalf("unexpected first record %+v", got[0])
	}
	if got[1].Version != 0 || got[1].Owner != "" {
		t.Fatalf("malformed version should read as 0, got %+v", got[1])
	}
}

func TestQueryHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, err := newGateway([]string{srv.URL}, "").Query(context.Background(), srv.URL, "alice"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestFetchBodyFallsBackInOrder(t *testing.T) {
	var mu sync.Mutex
	var order []string
	mk := func(name string, status int, body string) *httptest.Server {
		return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
			w.WriteHeader(status)
			io.WriteString(w, body)
		}))
	}
	first := mk("first", http.StatusNotFound, "")
	second := mk("second", http.StatusOK, "")
	third := mk("third", http.StatusOK, "<html>ok</html>")
	defer first.Close()
	defer second.Close()
	defer third.Close()

	g := newGateway([]string{first.URL, second.URL, third.URL}, "")
	body, err := g.FetchBody(context.Background(), "tx1")
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if body != "<html>ok</html>" {
		t.Fatalf("unexpected body %q", body)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(order) != 3 || order[0] != "first" || order[1] != "second" || order[2] != "third" {
		t.Fatalf("gateways not tried in order: %v", order)
	}
}

func TestFetchBodyCachesByAddress(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		io.WriteString(w, "body")
	}))
	defer srv.Close()

	g := newGateway([]string{srv.URL}, "")
	for i := 0; i < 3; i++ {
		if _, err := g.FetchBody(context.Background(), "tx1"); err != nil {
			t.Fatalf("fetch failed: %v", err)
		}
	}
	if atomic.LoadInt32(&hits) != 1 {
		t.Fatalf("expected one upstream hit, got %d", hits)
	}
}

func TestFetchBodyUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newGateway([]string{srv.URL, srv.URL}, "").FetchBody(context.Background(), "tx1")
	if err != ErrBodyUnavailable {
		t.Fatalf("expected ErrBodyUnavailable, got %v", err)
	}
}

func TestFetchBodyRejectsPathInjection(t *testing.T) {
	g := newGateway([]string{"http://127.0.0.1:1"}, "")
	if _, err := g.FetchBody(context.Background(), "../graphql"); err == nil {
		t.Fatalf("expected invalid address error")
	}
}
