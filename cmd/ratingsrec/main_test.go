// Ratingsrec - Collaborative Filtering Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ratingsrec

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/ratingsrec/internal/service"
)

const (
	itemCSV = "item,U1,U2,U3,T\nX,5,1,4,5\nY,1,5,2,1\nZ,5,1,4,\n"
	userCSV = "user,X,Y,Z\nU1,5,1,5\nU2,1,5,1\nU3,4,2,4\nT,5,1,\n"
)

type fixture struct {
	items string
	users string
	cache string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	t.Setenv("RATINGSREC_CONFIG", "")
	t.Setenv("RATINGSREC_LOG_LEVEL", "error")
	dir := t.TempDir()
	f := fixture{
		items: filepath.Join(dir, "items.csv"),
		users: filepath.Join(dir, "users.csv"),
		cache: filepath.Join(dir, "cache", "sims.csv"),
	}
	for path, content := range map[string]string{f.items: itemCSV, f.users: userCSV} {
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return f
}

func runCLI(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = run(context.Background(), args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestRun_Recommend(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "item based",
			args: []string{"recommend", "-mode", "item", "-user", "T", "-dataset", f.items, "-cache", f.cache},
			want: "Recommendations for T:\n- Z (Score: 5.00)\n",
		},
		{
			name: "user based",
			args: []string{"recommend", "-mode", "user", "-user", "T", "-dataset", f.users},
			want: "Recommendations for T:\n- Z (Score: 4.00)\n",
		},
		{
			name: "unknown user falls back to popularity",
			args: []string{"recommend", "-mode", "user", "-user", "nobody", "-dataset", f.users, "-limit", "2"},
			want: "No personalized recommendations found for nobody. Recommending most popular items instead:\n" +
				"- X (Average Rating: 3.75)\n- Z (Average Rating: 3.33)\n",
		},
		{
			name: "item mode fallback without a cache",
			args: []string{"recommend", "-mode", "item", "-user", "nobody", "-dataset", f.items, "-no-cache"},
			want: "No personalized recommendations found for nobody. Recommending most popular items instead:\n" +
				"- X (Average Rating: 3.75)\n- Z (Average Rating: 3.33)\n- Y (Average Rating: 2.25)\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, stdout, stderr := runCLI(t, tt.args...)
			if code != exitOK {
				t.Fatalf("exit = %d, stderr: %s", code, stderr)
			}
			if stdout != tt.want {
				t.Errorf("stdout =\n%s\nwant\n%s", stdout, tt.want)
			}
		})
	}

	if _, err := os.Stat(f.cache); err != nil {
		t.Errorf("item-based run should persist the similarity cache: %v", err)
	}
}

func TestRun_RecommendJSON(t *testing.T) {
	f := newFixture(t)
	code, stdout, stderr := runCLI(t, "recommend", "-mode", "user", "-user", "T", "-dataset", f.users, "-format", "json")
	if code != exitOK {
		t.Fatalf("exit = %d, stderr: %s", code, stderr)
	}

	var res service.Result
	if err := json.Unmarshal([]byte(stdout), &res); err != nil {
		t.Fatalf("decode %q: %v", stdout, err)
	}
	if !res.Personalized || res.Mode != service.ModeUser || len(res.Items) != 1 || res.Items[0].ID != "Z" {
		t.Errorf("result = %+v", res)
	}
}

func TestRun_BadArguments(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		args []string
	}{
		{"no command", nil},
		{"unknown command", []string{"train"}},
		{"missing user", []string{"recommend", "-mode", "item"}},
		{"missing mode", []string{"recommend", "-user", "T"}},
		{"bad mode", []string{"recommend", "-mode", "hybrid", "-user", "T"}},
		{"bad measure", []string{"recommend", "-mode", "user", "-user", "T", "-measure", "cosine", "-dataset", f.users}},
		{"bad format", []string{"recommend", "-mode", "user", "-user", "T", "-format", "xml", "-dataset", f.users}},
		{"negative limit", []string{"recommend", "-mode", "user", "-user", "T", "-limit", "-1", "-dataset", f.users}},
		{"undefined flag", []string{"recommend", "-verbose"}},
		{"stray argument", []string{"popular", "extra"}},
		{"missing dataset", []string{"recommend", "-mode", "user", "-user", "T", "-dataset", filepath.Join(t.TempDir(), "none.csv")}},
		{"missing config file", []string{"popular", "-config", filepath.Join(t.TempDir(), "none.yaml")}},
		{"invalid generator config", []string{"generate", "-items", "0", "-out", t.TempDir()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := runCLI(t, tt.args...)
			if code != exitError {
				t.Errorf("exit = %d, want %d", code, exitError)
			}
			if stderr == "" {
				t.Error("expected a message on stderr")
			}
		})
	}
}

func TestRun_Popular(t *testing.T) {
	f := newFixture(t)
	code, stdout, stderr := runCLI(t, "popular", "-orientation", "user", "-dataset", f.users)
	if code != exitOK {
		t.Fatalf("exit = %d, stderr: %s", code, stderr)
	}
	want := "Most popular items:\n- X (Average Rating: 3.75)\n- Z (Average Rating: 3.33)\n- Y (Average Rating: 2.25)\n"
	if stdout != want {
		t.Errorf("stdout =\n%s\nwant\n%s", stdout, want)
	}
}

func TestRun_Generate(t *testing.T) {
	newFixture(t)
	out := t.TempDir()
	code, stdout, stderr := runCLI(t, "generate", "-items", "5", "-users", "7", "-out", out)
	if code != exitOK {
		t.Fatalf("exit = %d, stderr: %s", code, stderr)
	}
	for _, name := range []string{"data_item_based.csv", "data_user_based.csv"} {
		path := filepath.Join(out, name)
		if !strings.Contains(stdout, path) {
			t.Errorf("stdout %q does not mention %s", stdout, path)
		}
		if _, err := os.Stat(path); err != nil {
			t.Error(err)
		}
	}
}

func TestFindConfigFlag(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"-mode", "item"}, ""},
		{[]string{"-config", "a.yaml"}, "a.yaml"},
		{[]string{"--config", "b.yaml", "-limit", "3"}, "b.yaml"},
		{[]string{"-limit", "3", "-config=c.yaml"}, "c.yaml"},
		{[]string{"--config=d.yaml"}, "d.yaml"},
		{[]string{"-config"}, ""},
	}
	for _, tt := range tests {
		if got := findConfigFlag(tt.args); got != tt.want {
			t.Errorf("findConfigFlag(%v) = %q, want %q", tt.args, got, tt.want)
		}
	}
}
