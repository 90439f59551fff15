package chunker

import (
	"regexp"
	"sort"
	"strings"
)

// Chunk is one analyzable region of a source file. ChunkID 0 is the
// file's global context (includes, defines, file-scope declarations)
// for regex-chunked languages.
type Chunk struct {
	File     string `json:"file"`
	ChunkID  int    `json:"chunk_id"`
	Language string `json:"language"`
	Type     string `json:"chunk_type,omitempty"`
	Name     string `json:"chunk_name,omitempty"`
	Code     string `json:"code"`
}

// Block is a named region produced by the SAS and COBOL splitters.
type Block struct {
	Type string
	Name string
	Code string
}

var (
	funcRe  = regexp.MustCompile(`(?m)^[ \t]*(?:[\w\[\]*&<>]+\s+)+(\w+)\s*\(.*?\)\s*\{`)
	classRe = regexp.MustCompile(`(?m)^[ \t]*(class|struct)\s+\w+\s*(?:[:\w\s,<>]*)?\{`)

	sasBlockRe  = regexp.MustCompile(`(?im)^[ \t]*(data|proc)\s+(\w+)`)
	cobolParaRe = regexp.MustCompile(`(?m)^[ \t]*([\w-]+)\.[ \t]*$`)
)

// ChunkRegex splits brace-language source (C family, Java, Scala,
// Perl, Shell) on function and class definitions. The first chunk is
// the file's global context; each following chunk runs from one
// definition to the start of the next. Files with no recognizable
// definitions come back as a single chunk of the whole file, without
// a global-context chunk.
func ChunkRegex(code string) []string {
	var globalLines []string
	for _, line := range strings.Split(code, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#include") || strings.HasPrefix(trimmed, "#define") {
			globalLines = append(globalLines, trimmed)
			continue
		}
		if strings.Contains(line, ";") &&
			!strings.Contains(line, "(") &&
			!strings.Contains(line, ")") &&
			!strings.HasPrefix(trimmed, "//") {
			globalLines = append(globalLines, trimmed)
		}
	}

	starts := append(matchStarts(funcRe, code), matchStarts(classRe, code)...)
	if len(starts) == 0 {
		return []string{code}
	}
	sort.Ints(starts)

	chunks := []string{strings.Join(globalLines, "\n")}
	for i, start := range starts {
		end := len(code)
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		chunks = append(chunks, strings.TrimSpace(code[start:end]))
	}
	return chunks
}

func matchStarts(re *regexp.Regexp, code string) []int {
	var starts []int
	for _, m := range re.FindAllStringIndex(code, -1) {
		starts = append(starts, m[0])
	}
	return starts
}

// ChunkSAS splits SAS source on data and proc step boundaries. A file
// with neither comes back whole as a single "full" block.
func ChunkSAS(code string) []Block {
	matches := sasBlockRe.FindAllStringSubmatchIndex(code, -1)
	if len(matches) == 0 {
		return []Block{{Type: "full", Name: "entire_script", Code: code}}
	}

	blocks := make([]Block, 0, len(matches))
	for i, m := range matches {
		end := len(code)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		blocks = append(blocks, Block{
			Type: strings.ToLower(code[m[2]:m[3]]),
			Name: code[m[4]:m[5]],
			Code: strings.TrimSpace(code[m[0]:end]),
		})
	}
	return blocks
}

// ChunkCOBOL splits COBOL source on paragraph labels (a name alone on
// a line, ending in a period). A file with no labels comes back whole
// as a single "full" block.
func ChunkCOBOL(code string) []Block {
	matches := cobolParaRe.FindAllStringSubmatchIndex(code, -1)
	if len(matches) == 0 {
		return []Block{{Type: "full", Name: "entire_program", Code: code}}
	}

	blocks := make([]Block, 0, len(matches))
	for i, m := range matches {
		end := len(code)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		blocks = append(blocks, Block{
			Type: "paragraph",
			Name: code[m[2]:m[3]],
			Code: strings.TrimSpace(code[m[0]:end]),
		})
	}
	return blocks
}
