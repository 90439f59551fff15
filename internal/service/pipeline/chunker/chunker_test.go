package chunker

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const cSource = `#include <stdio.h>
#define MAX 10

int counter;

int add(int a, int b) {
	return a + b;
}

void greet(void) {
	printf("hi\n");
}
`

func TestChunkRegex_CFunctions(t *testing.T) {
	chunks := ChunkRegex(cSource)

	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks (global + 2 functions), got %d: %q", len(chunks), chunks)
	}

	global := chunks[0]
	for _, want := range []string{"#include <stdio.h>", "#define MAX 10", "int counter;"} {
		if !strings.Contains(global, want) {
			t.Errorf("global context missing %q: %q", want, global)
		}
	}
	if !strings.Contains(chunks[1], "int add(int a, int b)") {
		t.Errorf("first function chunk wrong: %q", chunks[1])
	}
	if !strings.Contains(chunks[2], "void greet(void)") {
		t.Errorf("second function chunk wrong: %q", chunks[2])
	}
}

func TestChunkRegex_ClassBlock(t *testing.T) {
	src := "class Account : public Base {\npublic:\n\tint id;\n};\n"
	chunks := ChunkRegex(src)

	if len(chunks) != 2 {
		t.Fatalf("expected global + class chunk, got %d: %q", len(chunks), chunks)
	}
	if !strings.Contains(chunks[1], "class Account") {
		t.Errorf("class chunk wrong: %q", chunks[1])
	}
}

func TestChunkRegex_NoDefinitionsFallsBackWhole(t *testing.T) {
	src := "just some text\nwith no code structure\n"
	chunks := ChunkRegex(src)

	if len(chunks) != 1 || chunks[0] != src {
		t.Fatalf("expected single whole-file chunk, got %q", chunks)
	}
}

func TestChunkSAS_DataAndProc(t *testing.T) {
	src := `data work.sales;
	set raw.sales;
run;

proc print data=work.sales;
run;
`
	blocks := ChunkSAS(src)

	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}
	if blocks[0].Type != "data" || blocks[0].Name != "work" {
		t.Errorf("first block: %+v", blocks[0])
	}
	if blocks[1].Type != "proc" || blocks[1].Name != "print" {
		t.Errorf("second block: %+v", blocks[1])
	}
	if !strings.Contains(blocks[0].Code, "set raw.sales;") {
		t.Errorf("data block body wrong: %q", blocks[0].Code)
	}
}

func TestChunkSAS_NoBlocks(t *testing.T) {
	blocks := ChunkSAS("%let x = 1;\n")

	if len(blocks) != 1 || blocks[0].Type != "full" || blocks[0].Name != "entire_script" {
		t.Fatalf("expected single full block, got %+v", blocks)
	}
}

func TestChunkCOBOL_Paragraphs(t *testing.T) {
	src := `MAIN-PARA.
    PERFORM INIT-PARA.
    STOP RUN.
INIT-PARA.
    MOVE 0 TO TOTAL.
`
	blocks := ChunkCOBOL(src)

	if len(blocks) != 2 {
		t.Fatalf("expected 2 paragraphs, got %d: %+v", len(blocks), blocks)
	}
	if blocks[0].Name != "MAIN-PARA" || blocks[1].Name != "INIT-PARA" {
		t.Errorf("paragraph names wrong: %+v", blocks)
	}
	if !strings.Contains(blocks[0].Code, "PERFORM INIT-PARA.") {
		t.Errorf("first paragraph body wrong: %q", blocks[0].Code)
	}
}

func TestChunkCOBOL_NoParagraphs(t *testing.T) {
	blocks := ChunkCOBOL("DISPLAY 'HELLO'\n")

	if len(blocks) != 1 || blocks[0].Name != "entire_program" {
		t.Fatalf("expected single full block, got %+v", blocks)
	}
}

func TestRegistry_Lookup(t *testing.T) {
	registry, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	lang, ok := registry.LanguageFor(".cbl")
	if !ok || lang.Name != "COBOL" || lang.Strategy != StrategyCOBOL {
		t.Errorf("lookup .cbl: %+v, ok=%v", lang, ok)
	}

	lang, ok = registry.LanguageFor(".PY")
	if !ok || lang.Name != "Python" {
		t.Errorf("lookup .PY should be case-insensitive: %+v, ok=%v", lang, ok)
	}
	if registry.Chunkable(".py") {
		t.Error("python is detection-only, must not be chunkable")
	}

	if _, ok := registry.LanguageFor(".xyz"); ok {
		t.Error("unknown extension should not resolve")
	}
}

func TestParser_ParseFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "main.c"), cSource)
	writeFile(t, filepath.Join(dir, "report.sas"), "proc print data=x;\nrun;\n")
	writeFile(t, filepath.Join(dir, "notes.txt"), "not source code")
	writeFile(t, filepath.Join(dir, ".git", "config"), "[core]")

	parser, err := NewParser(slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}

	chunks, err := parser.ParseFiles(dir)
	if err != nil {
		t.Fatalf("ParseFiles: %v", err)
	}

	byFile := map[string]int{}
	for _, c := range chunks {
		byFile[c.File]++
		if filepath.IsAbs(c.File) {
			t.Errorf("chunk path should be relative: %q", c.File)
		}
	}
	if byFile["main.c"] != 3 {
		t.Errorf("main.c chunks = %d, want 3", byFile["main.c"])
	}
	if byFile["report.sas"] != 1 {
		t.Errorf("report.sas chunks = %d, want 1", byFile["report.sas"])
	}
	if byFile["notes.txt"] != 0 {
		t.Error("unsupported file was chunked")
	}
	for _, c := range chunks {
		if strings.HasPrefix(c.File, ".git") {
			t.Errorf(".git contents were chunked: %q", c.File)
		}
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
