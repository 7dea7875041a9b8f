package classifier

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
)

type fixed string

func (f fixed) Classify(context.Context, string) string { return string(f) }

func Test_Probe(t *testing.T) {
	app := fiber.New()
	app.Post("/api/test/classify", Probe(fixed("tax")))

	req := httptest.NewRequest("POST", "/api/test/classify", strings.NewReader(`{"description":"IRS audit"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var out ProbeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.OriginalDescription != "IRS audit" || out.ClassifiedCategory != "tax" {
		t.Fatalf("unexpected body: %+v", out)
	}

	req = httptest.NewRequest("POST", "/api/test/classify", strings.NewReader(`{"description":"  "}`))
	req.Header.Set("Content-Type", "application/json")
	resp, _ = app.Test(req)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400 for blank description, got %d", resp.StatusCode)
	}
}
