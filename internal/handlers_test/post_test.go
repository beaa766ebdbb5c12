package handlers_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"postboard/internal/db"
)

func TestTimeline_NewestFirst(t *testing.T) {
	env := setupTestEnv(t)
	author, _ := env.signIn(t, "alice")
	env.post(t, author, "goodbye")
	env.post(t, author, "hello world")

	w := env.do(http.MethodGet, "/", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	hello, bye := strings.Index(body, "hello world"), strings.Index(body, "goodbye")
	if hello < 0 || bye < 0 {
		t.Fatalf("timeline is missing posts:\n%s", body)
	}
	if hello > bye {
		t.Error("expected newest post first")
	}
}

func TestTimeline_Search(t *testing.T) {
	env := setupTestEnv(t)
	author, _ := env.signIn(t, "alice")
	env.post(t, author, "goodbye")
	env.post(t, author, "hello world")

	w := env.do(http.MethodGet, "/?q=hello", nil, nil)
	body := w.Body.String()
	if !strings.Contains(body, "hello world") {
		t.Error("expected matching post in results")
	}
	if strings.Contains(body, "goodbye") {
		t.Error("expected non-matching post to be filtered out")
	}

	w = env.do(http.MethodGet, "/?q=%20", nil, nil)
	body = w.Body.String()
	if !strings.Contains(body, "hello world") || strings.Contains(body, "goodbye") {
		t.Error("a space is a literal search term")
	}

	w = env.do(http.MethodGet, "/?q=hello%20", nil, nil)
	if !strings.Contains(w.Body.String(), "hello world") {
		t.Error("expected trailing space to match inside content")
	}

	w = env.do(http.MethodGet, "/?q=", nil, nil)
	if !strings.Contains(w.Body.String(), "goodbye") {
		t.Error("empty query should not filter")
	}
}

func TestGetPost(t *testing.T) {
	env := setupTestEnv(t)
	author, _ := env.signIn(t, "alice")
	id := env.post(t, author, "a post body")

	w := env.do(http.MethodGet, fmt.Sprintf("/post/%d", id), nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "a post body") {
		t.Error("expected post content")
	}
	if strings.Contains(w.Body.String(), "/edit") {
		t.Error("anonymous viewer should not see the edit link")
	}
}

func TestGetPost_NotFound(t *testing.T) {
	env := setupTestEnv(t)
	for _, path := range []string{"/post/999", "/post/abc", "/no-such-page"} {
		w := env.do(http.MethodGet, path, nil, nil)
		if w.Code != http.StatusNotFound {
			t.Errorf("%s: expected 404, got %d", path, w.Code)
		}
	}
}

func TestCreatePost_RequiresLogin(t *testing.T) {
	env := setupTestEnv(t)

	w := env.do(http.MethodGet, "/post/new", nil, nil)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/login?next=%2Fpost%2Fnew" {
		t.Errorf("unexpected Location %q", loc)
	}

	w = env.do(http.MethodPost, "/post/new", url.Values{"content": {"sneaky"}}, nil)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", w.Code)
	}
	posts, _ := env.store.ListPosts(context.Background(), "")
	if len(posts) != 0 {
		t.Errorf("anonymous create stored %d posts", len(posts))
	}
}

func TestCreatePost_Success(t *testing.T) {
	env := setupTestEnv(t)
	uid, cookie := env.signIn(t, "alice")

	w := env.do(http.MethodPost, "/post/new", url.Values{"content": {"  This is a post.  "}}, cookie)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/" {
		t.Errorf("expected redirect to /, got %q", loc)
	}

	posts, err := env.store.ListPosts(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	if len(posts) != 1 {
		t.Fatalf("expected 1 post, got %d", len(posts))
	}
	if posts[0].AuthorID != uid || posts[0].Content != "This is a post." {
		t.Errorf("unexpected post %+v", posts[0])
	}
}

func TestCreatePost_Empty(t *testing.T) {
	env := setupTestEnv(t)
	_, cookie := env.signIn(t, "alice")

	w := env.do(http.MethodPost, "/post/new", url.Values{"content": {"   "}}, cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("expected form re-render, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "This field is required.") {
		t.Error("expected field error")
	}
	posts, _ := env.store.ListPosts(context.Background(), "")
	if len(posts) != 0 {
		t.Error("empty post was stored")
	}
}

func TestEditPost_Author(t *testing.T) {
	env := setupTestEnv(t)
	uid, cookie := env.signIn(t, "alice")
	id := env.post(t, uid, "first draft")
	path := fmt.Sprintf("/post/%d/edit", id)

	w := env.do(http.MethodGet, path, nil, cookie)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "first draft") {
		t.Fatalf("expected prefilled form, got %d", w.Code)
	}

	w = env.do(http.MethodPost, path, url.Values{"content": {"second draft"}}, cookie)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != fmt.Sprintf("/post/%d", id) {
		t.Errorf("unexpected Location %q", loc)
	}
	p, err := env.store.GetPost(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	if p.Content != "second draft" || p.AuthorID != uid {
		t.Errorf("unexpected post after edit %+v", p)
	}
}

func TestEditPost_NotAuthor(t *testing.T) {
	env := setupTestEnv(t)
	owner, _ := env.signIn(t, "alice")
	_, intruder := env.signIn(t, "mallory")
	id := env.post(t, owner, "mine")
	detail := fmt.Sprintf("/post/%d", id)

	for _, method := range []string{http.MethodGet, http.MethodPost} {
		var form url.Values
		if method == http.MethodPost {
			form = url.Values{"content": {"hijacked"}}
		}
		w := env.do(method, detail+"/edit", form, intruder)
		if w.Code != http.StatusFound {
			t.Errorf("%s: expected 302, got %d", method, w.Code)
		}
		if loc := w.Header().Get("Location"); loc != detail {
			t.Errorf("%s: expected redirect to %s, got %q", method, detail, loc)
		}
	}

	p, _ := env.store.GetPost(context.Background(), id)
	if p.Content != "mine" {
		t.Errorf("non-author changed content to %q", p.Content)
	}
}

func TestDeletePost_ConfirmThenDelete(t *testing.T) {
	env := setupTestEnv(t)
	uid, cookie := env.signIn(t, "alice")
	id := env.post(t, uid, "short lived")
	path := fmt.Sprintf("/post/%d/delete", id)

	w := env.do(http.MethodGet, path, nil, cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("expected confirmation page, got %d", w.Code)
	}
	if _, err := env.store.GetPost(context.Background(), id); err != nil {
		t.Fatal("GET must not delete the post")
	}

	w = env.do(http.MethodPost, path, url.Values{}, cookie)
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/" {
		t.Fatalf("expected 303 to /, got %d %q", w.Code, w.Header().Get("Location"))
	}
	if _, err := env.store.GetPost(context.Background(), id); !errors.Is(err, db.ErrPostNotFound) {
		t.Errorf("expected post to be gone, got %v", err)
	}
}

func TestDeletePost_NotAuthor(t *testing.T) {
	env := setupTestEnv(t)
	owner, _ := env.signIn(t, "alice")
	_, intruder := env.signIn(t, "mallory")
	id := env.post(t, owner, "keep me")

	w := env.do(http.MethodPost, fmt.Sprintf("/post/%d/delete", id), url.Values{}, intruder)
	if w.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", w.Code)
	}
	if _, err := env.store.GetPost(context.Background(), id); err != nil {
		t.Errorf("post should survive: %v", err)
	}
}
