// bench - JSV size benchmark runner
//
// Compares the JSV and JSON encodings of a set of typed payloads against
// encoding/json and msgpack:
//   - Bytes on wire, raw and zstd-compressed
//   - Approximate token counts (using byte-based heuristics)
//
// Output: CSV and markdown summary in the directory given as the first
// argument (default: current directory).
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/Neumenon/jsv/jsv"
)

type CaseResult struct {
	Name        string
	StdJSON     int
	JSONBytes   int
	JSVBytes    int
	Msgpack     int
	JSVZstd     int
	BytesPct    float64
	JSONTokens  int
	JSVTokens   int
	TokensSaved int
	TokensPct   float64
}

type benchCase struct {
	Name  string
	Value any
}

type lineItem struct {
	SKU      string
	Title    string
	Qty      int
	Price    jsv.Decimal
	Discount *jsv.Decimal
}

type purchase struct {
	ID       uuid.UUID
	Customer string
	Placed   time.Time
	Lines    []lineItem
	Tags     []string
	Meta     map[string]string
}

type metric struct {
	Name   string
	Labels map[string]string
	Points []float64
	Window time.Duration
}

type message struct {
	Role    string
	Content string
}

func main() {
	outDir := "."
	if len(os.Args) > 1 {
		outDir = os.Args[1]
	}

	cases := buildCases()
	fmt.Fprintf(os.Stderr, "JSV Benchmark Runner\n")
	fmt.Fprintf(os.Stderr, "====================\n")
	fmt.Fprintf(os.Stderr, "Cases: %d\n\n", len(cases))

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cannot create zstd encoder: %v\n", err)
		os.Exit(1)
	}
	defer enc.Close()

	var results []CaseResult
	var totalJSON, totalJSV, totalJSONTok, totalJSVTok int

	for _, c := range cases {
		stdJSON, err := json.Marshal(c.Value)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Skip %s: encoding/json: %v\n", c.Name, err)
			continue
		}
		jsonText, err := jsv.ToJSON(c.Value)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Skip %s: json: %v\n", c.Name, err)
			continue
		}
		jsvText, err := jsv.ToJSV(c.Value)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Skip %s: jsv: %v\n", c.Name, err)
			continue
		}
		packed, err := msgpack.Marshal(c.Value)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Skip %s: msgpack: %v\n", c.Name, err)
			continue
		}
		compressed := enc.EncodeAll([]byte(jsvText), nil)

		jsonBytes, jsvBytes := len(jsonText), len(jsvText)
		bytesPct := 0.0
		if jsonBytes > 0 {
			bytesPct = float64(jsonBytes-jsvBytes) / float64(jsonBytes) * 100.0
		}
		jsonTokens := estimateTokens(jsonText)
		jsvTokens := estimateTokens(jsvText)
		tokensPct := 0.0
		if jsonTokens > 0 {
			tokensPct = float64(jsonTokens-jsvTokens) / float64(jsonTokens) * 100.0
		}

		results = append(results, CaseResult{
			Name:        c.Name,
			StdJSON:     len(stdJSON),
			JSONBytes:   jsonBytes,
			JSVBytes:    jsvBytes,
			Msgpack:     len(packed),
			JSVZstd:     len(compressed),
			BytesPct:    bytesPct,
			JSONTokens:  jsonTokens,
			JSVTokens:   jsvTokens,
			TokensSaved: jsonTokens - jsvTokens,
			TokensPct:   tokensPct,
		})
		totalJSON += jsonBytes
		totalJSV += jsvBytes
		totalJSONTok += jsonTokens
		totalJSVTok += jsvTokens
	}
	if len(results) == 0 {
		fmt.Fprintln(os.Stderr, "No cases encoded")
		os.Exit(1)
	}

	csvPath := filepath.Join(outDir, "bench_results.csv")
	if csvFile, err := os.Create(csvPath); err == nil {
		writeCSV(csvFile, results)
		csvFile.Close()
		fmt.Fprintf(os.Stderr, "CSV written to: %s\n", csvPath)
	}

	mdPath := filepath.Join(outDir, "BENCH.md")
	if mdFile, err := os.Create(mdPath); err == nil {
		writeMarkdown(mdFile, results, totalJSON, totalJSV, totalJSONTok, totalJSVTok)
		mdFile.Close()
		fmt.Fprintf(os.Stderr, "Markdown written to: %s\n", mdPath)
	}

	fmt.Printf("\n=== SUMMARY ===\n")
	fmt.Printf("Cases:        %d\n", len(results))
	fmt.Printf("JSON total:   %d bytes, ~%d tokens\n", totalJSON, totalJSONTok)
	fmt.Printf("JSV total:    %d bytes, ~%d tokens\n", totalJSV, totalJSVTok)
	fmt.Printf("Bytes saved:  %d (%.1f%%)\n", totalJSON-totalJSV, float64(totalJSON-totalJSV)/float64(totalJSON)*100)
	fmt.Printf("Tokens saved: %d (%.1f%%)\n", totalJSONTok-totalJSVTok, float64(totalJSONTok-totalJSVTok)/float64(totalJSONTok)*100)
}

func buildCases() []benchCase {
	placed := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	discount := jsv.MustDecimal("0.10")

	purchases := make([]purchase, 20)
	for i := range purchases {
		purchases[i] = purchase{
			ID:       uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprint(i))),
			Customer: fmt.Sprintf("Customer %d, Ltd.", i),
			Placed:   placed.Add(time.Duration(i) * time.Hour),
			Lines: []lineItem{
				{SKU: "A-100", Title: "Widget", Qty: i + 1, Price: jsv.MustDecimal("9.99")},
				{SKU: "B-200", Title: "Gadget \"pro\"", Qty: 1, Price: jsv.MustDecimal("129.00"), Discount: &discount},
			},
			Tags: []string{"priority", "export"},
			Meta: map[string]string{"channel": "web", "region": "eu-west"},
		}
	}

	metrics := make([]metric, 10)
	for i := range metrics {
		points := make([]float64, 24)
		for j := range points {
			points[j] = float64(i*100+j) / 8
		}
		metrics[i] = metric{
			Name:   fmt.Sprintf("latency_p%d", 50+i*5),
			Labels: map[string]string{"service": "api", "zone": "b"},
			Points: points,
			Window: 5 * time.Minute,
		}
	}

	return []benchCase{
		{"single_purchase", purchases[0]},
		{"purchases_20", purchases},
		{"metrics_10", metrics},
		{"chat_messages", []message{
			{Role: "system", Content: "You are a helpful assistant."},
			{Role: "user", Content: "List three primes, comma separated."},
			{Role: "assistant", Content: "2, 3, 5"},
		}},
		{"string_map", map[string]string{"alpha": "1", "beta": "two words", "gamma": "x,y"}},
		{"int_matrix", [][]int{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}}},
	}
}

// estimateTokens provides a rough token count approximation
// Based on cl100k_base behavior: ~4 chars per token for ASCII,
// punctuation and special chars often get their own tokens
func estimateTokens(s string) int {
	if len(s) == 0 {
		return 0
	}

	tokens := 0
	i := 0
	for i < len(s) {
		c := s[i]

		if isPunctuation(c) {
			tokens++
			i++
			continue
		}

		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			i++
			continue // whitespace often merged with adjacent tokens
		}

		// Numbers: roughly 1 token per 3-4 digits
		if c >= '0' && c <= '9' {
			numLen := 0
			for i < len(s) && ((s[i] >= '0' && s[i] <= '9') || s[i] == '.' || s[i] == '-' || s[i] == '+' || s[i] == 'e' || s[i] == 'E') {
				numLen++
				i++
			}
			tokens += (numLen + 3) / 4
			continue
		}

		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_' {
			wordLen := 0
			for i < len(s) && (isAlphaNum(s[i]) || s[i] == '_') {
				wordLen++
				i++
			}
			tokens += (wordLen + 3) / 4
			continue
		}

		tokens++
		i++
	}

	return max(1, tokens)
}

func isPunctuation(c byte) bool {
	return c == '{' || c == '}' || c == '[' || c == ']' ||
		c == '(' || c == ')' || c == ':' || c == ',' ||
		c == '"' || c == '\'' || c == '=' || c == '@' ||
		c == '.' || c == ';' || c == '!' || c == '?'
}

func isAlphaNum(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func writeCSV(w io.Writer, results []CaseResult) {
	fmt.Fprintln(w, "name,encoding_json_bytes,json_bytes,jsv_bytes,msgpack_bytes,jsv_zstd_bytes,bytes_pct,json_tokens,jsv_tokens,tokens_saved,tokens_pct")
	for _, r := range results {
		fmt.Fprintf(w, "%s,%d,%d,%d,%d,%d,%.1f,%d,%d,%d,%.1f\n",
			r.Name, r.StdJSON, r.JSONBytes, r.JSVBytes, r.Msgpack, r.JSVZstd, r.BytesPct,
			r.JSONTokens, r.JSVTokens, r.TokensSaved, r.TokensPct)
	}
}

func writeMarkdown(w io.Writer, results []CaseResult, totalJSON, totalJSV, totalJSONTok, totalJSVTok int) {
	fmt.Fprintf(w, "# JSV Benchmark Results\n\n")
	fmt.Fprintf(w, "**Cases:** %d  \n\n", len(results))

	fmt.Fprintf(w, "## Summary\n\n")
	fmt.Fprintf(w, "| Metric | JSON | JSV | Savings |\n")
	fmt.Fprintf(w, "|--------|------|-----|---------|\n")
	bytesSaved := totalJSON - totalJSV
	tokensSaved := totalJSONTok - totalJSVTok
	fmt.Fprintf(w, "| **Bytes** | %d | %d | %d (%.1f%%) |\n", totalJSON, totalJSV, bytesSaved, float64(bytesSaved)/float64(totalJSON)*100)
	fmt.Fprintf(w, "| **Tokens** (est.) | ~%d | ~%d | ~%d (%.1f%%) |\n\n", totalJSONTok, totalJSVTok, tokensSaved, float64(tokensSaved)/float64(totalJSONTok)*100)

	sorted := make([]CaseResult, len(results))
	copy(sorted, results)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].BytesPct > sorted[j].BytesPct
	})

	fmt.Fprintf(w, "## Detailed Results (best savings first)\n\n")
	fmt.Fprintf(w, "| Case | encoding/json | JSON | JSV | msgpack | JSV+zstd | Bytes %% | Tok %% |\n")
	fmt.Fprintf(w, "|------|---------------|------|-----|---------|----------|---------|-------|\n")
	for _, r := range sorted {
		fmt.Fprintf(w, "| %s | %d | %d | %d | %d | %d | %.1f%% | %.1f%% |\n",
			truncateName(r.Name, 25), r.StdJSON, r.JSONBytes, r.JSVBytes, r.Msgpack, r.JSVZstd, r.BytesPct, r.TokensPct)
	}

	fmt.Fprintf(w, "\n## Methodology\n\n")
	fmt.Fprintf(w, "- **encoding/json:** `json.Marshal` of the same Go values\n")
	fmt.Fprintf(w, "- **JSON / JSV:** `jsv.ToJSON` and `jsv.ToJSV`\n")
	fmt.Fprintf(w, "- **msgpack:** `msgpack.Marshal`\n")
	fmt.Fprintf(w, "- **JSV+zstd:** JSV text compressed with zstd at the default level\n")
	fmt.Fprintf(w, "- **Tokens:** Estimated using cl100k_base-like heuristics\n")
}

func truncateName(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
