package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestErrorIncludesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("request_id", "req-1")

	Error(c, CodeNotFound, "Post not found")

	if w.Code != http.StatusNotFound {
		t.Fatalf("status want 404 got %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body failed: %v", err)
	}
	if body["detail"] != "Post not found" || body["request_id"] != "req-1" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestDataKeepsEmptySlice(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Data(c, CodeOK, []string{})

	if got := w.Body.String(); got != `{"data":[]}` {
		t.Fatalf("unexpected body: %s", got)
	}
}

func TestBuildPagination(t *testing.T) {
	p := BuildPagination(2, 10, 21)
	if p.TotalPage != 3 || p.Page != 2 || p.PageSize != 10 || p.Total != 21 {
		t.Fatalf("unexpected pagination: %+v", p)
	}
	if BuildPagination(1, 0, 5).TotalPage != 0 {
		t.Fatalf("zero page size should yield zero pages")
	}
}
