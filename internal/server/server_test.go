package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/netweave/netweave/pkg/pipeline"
	"github.com/netweave/netweave/pkg/store"
)

const sampleGML = `graph [
	directed 0
	node [
		id 1
		label "A"
	]
	node [
		id 2
		label "B"
	]
	edge [
		source 1
		target 2
	]
]
`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	return newTestServerWithDefaults(t, pipeline.Options{})
}

func newTestServerWithDefaults(t *testing.T, defaults pipeline.Options) *httptest.Server {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{})
	runner := pipeline.NewRunner(store.NewNullStore(), logger)
	ts := httptest.NewServer(New(runner, defaults, logger).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	body := decodeBody[map[string]string](t, resp)
	if body["status"] != "ok" {
		t.Errorf("status field = %q, want %q", body["status"], "ok")
	}
}

func TestConvert(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/v1/convert", convertRequest{
		Data: []byte(sampleGML),
		From: "gml",
		To:   "xnet",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	body := decodeBody[convertResponse](t, resp)
	if body.Format != "xnet" {
		t.Errorf("Format = %q, want %q", body.Format, "xnet")
	}
	if body.Nodes != 2 || body.Edges != 1 {
		t.Errorf("got %d nodes, %d edges, want 2, 1", body.Nodes, body.Edges)
	}
	if !strings.Contains(string(body.Data), "#vertices") {
		t.Errorf("converted data does not look like XNET:\n%s", body.Data)
	}
}

func TestConvertParseError(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/v1/convert", convertRequest{
		Data: []byte("not a graph"),
		From: "gml",
		To:   "gexf",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}

	body := decodeBody[errorResponse](t, resp)
	if body.Error.Code == "" {
		t.Error("error code should be set")
	}
}

func TestConvertUnknownFormat(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/v1/convert", convertRequest{
		Data: []byte(sampleGML),
		From: "gml",
		To:   "nope",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}

	body := decodeBody[errorResponse](t, resp)
	if body.Error.Code != "INVALID_FORMAT" {
		t.Errorf("error code = %q, want INVALID_FORMAT", body.Error.Code)
	}
}

func TestMalformedBody(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/v1/convert", "application/json", strings.NewReader("{nope"))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	body := decodeBody[errorResponse](t, resp)
	if body.Error.Code != "INVALID_INPUT" {
		t.Errorf("error code = %q, want INVALID_INPUT", body.Error.Code)
	}
}

func TestLayout(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/v1/layout", layoutRequest{
		Data:   []byte(sampleGML),
		Format: "gml",
		Steps:  50,
		Seed:   42,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	body := decodeBody[layoutResponse](t, resp)
	if body.Nodes != 2 {
		t.Errorf("Nodes = %d, want 2", body.Nodes)
	}
	// Positions show up as graphics blocks in the GML output.
	if !strings.Contains(string(body.Data), "graphics") {
		t.Errorf("layout output has no positions:\n%s", body.Data)
	}
}

func TestLayoutDeterministic(t *testing.T) {
	ts := newTestServer(t)

	req := layoutRequest{Data: []byte(sampleGML), Format: "gml", Steps: 50, Seed: 7}

	first := decodeBody[layoutResponse](t, postJSON(t, ts.URL+"/v1/layout", req))
	second := decodeBody[layoutResponse](t, postJSON(t, ts.URL+"/v1/layout", req))

	if !bytes.Equal(first.Data, second.Data) {
		t.Error("same seed and steps should give byte-identical output")
	}
}

func TestRenderDOT(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/v1/render", renderRequest{
		Data:   []byte(sampleGML),
		Format: "gml",
		Options: pipeline.Options{
			Steps:   25,
			Formats: []string{pipeline.FormatDOT},
		},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	body := decodeBody[renderResponse](t, resp)
	dot, ok := body.Artifacts[pipeline.FormatDOT]
	if !ok {
		t.Fatal("missing dot artifact")
	}
	if !strings.Contains(string(dot), `"1" -- "2"`) {
		t.Errorf("dot output missing edge:\n%s", dot)
	}
	if body.Cached {
		t.Error("null store should never report a cache hit")
	}
}

func TestRenderUsesConfiguredDefaults(t *testing.T) {
	ts := newTestServerWithDefaults(t, pipeline.Options{
		Steps:   25,
		Formats: []string{pipeline.FormatDOT},
	})

	// The request sets no options at all; the server's configured
	// defaults decide the output format.
	resp := postJSON(t, ts.URL+"/v1/render", renderRequest{
		Data:   []byte(sampleGML),
		Format: "gml",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	body := decodeBody[renderResponse](t, resp)
	if _, ok := body.Artifacts[pipeline.FormatDOT]; !ok {
		t.Fatal("missing dot artifact from configured default format")
	}
}

func TestMergeOptions(t *testing.T) {
	base := pipeline.Options{Steps: 100, Seed: 7, Formats: []string{pipeline.FormatSVG}, Scale: 2}

	merged := mergeOptions(base, pipeline.Options{Steps: 25})
	if merged.Steps != 25 {
		t.Errorf("Steps = %d, want request value 25", merged.Steps)
	}
	if merged.Seed != 7 || merged.Scale != 2 {
		t.Errorf("unset request fields should keep defaults, got seed=%d scale=%g", merged.Seed, merged.Scale)
	}

	merged = mergeOptions(base, pipeline.Options{Formats: []string{pipeline.FormatDOT}})
	if len(merged.Formats) != 1 || merged.Formats[0] != pipeline.FormatDOT {
		t.Errorf("Formats = %v, want [dot]", merged.Formats)
	}
}

func TestRenderInvalidFormat(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/v1/render", renderRequest{
		Data:   []byte(sampleGML),
		Format: "gml",
		Options: pipeline.Options{
			Formats: []string{"tiff"},
		},
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestUnknownRoute(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/v1/nope")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}
