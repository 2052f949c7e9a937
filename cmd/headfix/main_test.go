// Package main provides tests for the headfix CLI.
package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leapstack-labs/headfix/internal/cli"
)

func templatesDir(t *testing.T) string {
	t.Helper()
	// Get the absolute path to testdata directory
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	return filepath.Join(wd, "..", "..", "testdata", "templates")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := cli.NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	output, err := run(t, "version")
	if err != nil {
		t.Errorf("version command error = %v", err)
	}
	if !strings.Contains(output, "headfix") {
		t.Errorf("version output should contain 'headfix', got: %s", output)
	}
}

func TestHelpCommand(t *testing.T) {
	output, err := run(t, "--help")
	if err != nil {
		t.Errorf("help command error = %v", err)
	}

	expectedCommands := []string{"render", "tree", "owners", "watch", "version", "completion"}
	for _, expected := range expectedCommands {
		if !strings.Contains(output, expected) {
			t.Errorf("help output should contain '%s', got: %s", expected, output)
		}
	}
}

func TestRenderCommand(t *testing.T) {
	output, err := run(t, "render", "blog/post/index.page",
		"--templates-dir", templatesDir(t),
		"--output", "text")
	if err != nil {
		t.Fatalf("render command error = %v", err)
	}

	expected := []string{
		`<link href="/css/site.css" rel="stylesheet" />`,
		`<link href="/blog/blog.css" rel="stylesheet" />`,
		`<link rel="alternate" type="application/rss+xml" href="/blog/feed.xml" />`,
		`<link href="/blog/post/post.css" rel="stylesheet" />`,
		`<meta name="description" content="First post" />`,
		`<script src="/blog/post/highlight.js"></script>`,
		`<!-- post specific assets -->`,
		`<h1>First post</h1>`,
	}
	for _, want := range expected {
		if !strings.Contains(output, want) {
			t.Errorf("render output should contain %s, got: %s", want, output)
		}
	}
}

func TestRenderCommandWithoutRepair(t *testing.T) {
	output, err := run(t, "render", "blog/post/index.page",
		"--templates-dir", templatesDir(t),
		"--output", "text",
		"--repair=false")
	if err != nil {
		t.Fatalf("render command error = %v", err)
	}

	// Content supplied to head placeholders is written as authored.
	if !strings.Contains(output, `<link href="post.css" rel="stylesheet">`) {
		t.Errorf("unrepaired output should keep the raw link, got: %s", output)
	}
	if !strings.Contains(output, `<link href="/css/site.css" rel="stylesheet" />`) {
		t.Errorf("links outside placeholders are always rebased, got: %s", output)
	}
}

func TestRenderCommandBasePath(t *testing.T) {
	output, err := run(t, "render", "about.page",
		"--templates-dir", templatesDir(t),
		"--base-path", "/docs",
		"--output", "text")
	if err != nil {
		t.Fatalf("render command error = %v", err)
	}
	if !strings.Contains(output, `href="/docs/css/site.css"`) {
		t.Errorf("output should resolve ~/ against the base path, got: %s", output)
	}
	if strings.Contains(output, "Nothing here yet") {
		t.Errorf("default content should be replaced by the page region, got: %s", output)
	}
}

func TestRenderCommandJSON(t *testing.T) {
	output, err := run(t, "render", "about.page", "blog/post/index.page",
		"--templates-dir", templatesDir(t),
		"--output", "json")
	if err != nil {
		t.Fatalf("render --output json error = %v", err)
	}

	var results []struct {
		Page   string `json:"page"`
		Repair struct {
			Recognized int `json:"recognized"`
			Promoted   int `json:"promoted"`
		} `json:"repair"`
	}
	if err := json.Unmarshal([]byte(output), &results); err != nil {
		t.Fatalf("output should be JSON: %v\n%s", err, output)
	}
	if len(results) != 2 || results[0].Page != "about.page" || results[1].Page != "blog/post/index.page" {
		t.Fatalf("results should follow argument order, got: %+v", results)
	}
	if results[1].Repair.Recognized != 4 {
		t.Errorf("recognized = %d, want 4", results[1].Repair.Recognized)
	}
	if results[1].Repair.Promoted != 1 {
		t.Errorf("promoted = %d, want 1", results[1].Repair.Promoted)
	}
}

func TestTreeCommand(t *testing.T) {
	output, err := run(t, "tree", "blog/post/index.page",
		"--templates-dir", templatesDir(t),
		"--output", "text")
	if err != nil {
		t.Fatalf("tree command error = %v", err)
	}
	if !strings.Contains(output, `script <script> src="highlight.js" runat="server" (owner blog/post/index.page)`) {
		t.Errorf("tree should show the promoted script owned by the page, got: %s", output)
	}
}

func TestOwnersCommand(t *testing.T) {
	output, err := run(t, "owners", "blog/post/index.page",
		"--templates-dir", templatesDir(t),
		"--output", "text")
	if err != nil {
		t.Fatalf("owners command error = %v", err)
	}
	if !strings.Contains(output, "misreported)") {
		t.Errorf("owners output should end with a summary, got: %s", output)
	}
}

func TestConfigFile(t *testing.T) {
	cfgDir := t.TempDir()
	cfgPath := filepath.Join(cfgDir, "headfix.yaml")
	content := "templates_dir: " + templatesDir(t) + "\nbase_path: /site\noutput: text\n"
	if err := os.WriteFile(cfgPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	output, err := run(t, "render", "about.page", "--config", cfgPath)
	if err != nil {
		t.Fatalf("render with config error = %v", err)
	}
	if !strings.Contains(output, `href="/site/css/site.css"`) {
		t.Errorf("config file base_path should apply, got: %s", output)
	}
}

func TestMissingPage(t *testing.T) {
	_, err := run(t, "render", "missing.page", "--templates-dir", templatesDir(t))
	if err == nil {
		t.Error("render of a missing page should fail")
	}
}
