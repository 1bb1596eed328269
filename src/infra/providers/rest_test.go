package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anven/resona/src/music"
)

type recordedRequest struct {
	method string
	path   string
	auth   string
}

func newTestServer(t *testing.T, status int, body string) (*RestDataService, *[]recordedRequest) {
	t.Helper()
	var requests []recordedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, recordedRequest{
			method: r.Method,
			path:   r.URL.Path,
			auth:   r.Header.Get("Authorization"),
		})
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return NewRestDataService(server.URL, "test-key"), &requests
}

func TestGetLikedTrackIDs(t *testing.T) {
	service, requests := newTestServer(t, http.StatusOK, `{"trackIds":["t1","t2"]}`)

	ids, err := service.GetLikedTrackIDs(context.Background(), "u1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(ids) != 2 || ids[0] != "t1" || ids[1] != "t2" {
		t.Errorf("expected [t1 t2], got %v", ids)
	}

	req := (*requests)[0]
	if req.method != http.MethodGet || req.path != "/users/u1/likes" {
		t.Errorf("unexpected request %+v", req)
	}
	if req.auth != "Bearer test-key" {
		t.Errorf("expected bearer auth, got %q", req.auth)
	}
}

func TestLikeRowOperations(t *testing.T) {
	service, requests := newTestServer(t, http.StatusNoContent, "")
	ctx := context.Background()

	if err := service.InsertLike(ctx, "u1", "t1"); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if err := service.DeleteLike(ctx, "u1", "t1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if len(*requests) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(*requests))
	}
	insert, del := (*requests)[0], (*requests)[1]
	if insert.method != http.MethodPut || insert.path != "/users/u1/likes/t1" {
		t.Errorf("unexpected insert request %+v", insert)
	}
	if del.method != http.MethodDelete || del.path != "/users/u1/likes/t1" {
		t.Errorf("unexpected delete request %+v", del)
	}
}

func TestGetPlaylists_MapsRows(t *testing.T) {
	service, _ := newTestServer(t, http.StatusOK,
		`{"items":[{"id":"p1","user_id":"u1","title":"Mix","public":true,"tracks_count":7}]}`)

	playlists, err := service.GetPlaylists(context.Background(), "u1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(playlists) != 1 {
		t.Fatalf("expected one playlist, got %d", len(playlists))
	}
	p := playlists[0]
	if p.ID != "p1" || p.Title != "Mix" || !p.Public || p.TracksCount != 7 {
		t.Errorf("unexpected playlist %+v", p)
	}
}

func TestUpdatePlaylist_EmptyPatchSkipsRequest(t *testing.T) {
	service, requests := newTestServer(t, http.StatusOK, "")

	if err := service.UpdatePlaylist(context.Background(), "p1", music.PlaylistPatch{}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(*requests) != 0 {
		t.Errorf("an empty patch must not hit the server, got %d requests", len(*requests))
	}
}

func TestDo_NonSuccessStatusIsError(t *testing.T) {
	service, _ := newTestServer(t, http.StatusForbidden, "")

	if err := service.InsertLike(context.Background(), "u1", "t1"); err == nil {
		t.Error("expected an error for a 403 response")
	}
}

func TestPlaylistTrackLinkPaths(t *testing.T) {
	service, requests := newTestServer(t, http.StatusNoContent, "")
	ctx := context.Background()

	service.InsertPlaylistTrack(ctx, "p1", "t1")
	service.DeletePlaylistTrack(ctx, "p1", "t1")

	if len(*requests) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(*requests))
	}
	if (*requests)[0].method != http.MethodPut || (*requests)[0].path != "/playlists/p1/tracks/t1" {
		t.Errorf("unexpected insert request %+v", (*requests)[0])
	}
	if (*requests)[1].method != http.MethodDelete || (*requests)[1].path != "/playlists/p1/tracks/t1" {
		t.Errorf("unexpected delete request %+v", (*requests)[1])
	}
}
