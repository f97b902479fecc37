package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/symptomcheck/internal/testutil"
)

func TestRecoveryRendersErrorPage(t *testing.T) {
	handler := Recovery(testutil.NopLogger(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("template exploded")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/predict", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))

	doc, err := goquery.NewDocumentFromReader(rr.Body)
	require.NoError(t, err)
	assert.Equal(t, "Error | Symptom Check", doc.Find("title").Text())
	assert.Equal(t, "Something went wrong", doc.Find("h1").Text())
	assert.Contains(t, doc.Find(".alert-error").Text(), "Please try again")
	assert.NotContains(t, rr.Body.String(), "template exploded")
}
