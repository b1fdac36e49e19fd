package validators

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

type quantityPayload struct {
	Quantity int    `json:"quantity" validate:"required,min=1"`
	Role     string `json:"role" validate:"omitempty,oneof=customer admin"`
}

func TestDecodeJSONBodyReportsFieldErrors(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"quantity":0,"role":"owner"}`))
	var dest quantityPayload
	err := DecodeJSONBody(req, &dest)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	details, ok := typed.Details().(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "is required", details["quantity"])
	assert.Equal(t, "must be one of customer admin", details["role"])
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"quantity":1,"extra":true}`))
	var dest quantityPayload
	assert.True(t, pkgerrors.HasCode(DecodeJSONBody(req, &dest), pkgerrors.CodeValidation))
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(&quantityPayload{Quantity: 2}))
	assert.Error(t, Validate(&quantityPayload{}))
}

func TestParseUUIDParam(t *testing.T) {
	id := uuid.New()
	rc := chi.NewRouteContext()
	rc.URLParams.Add("userId", id.String())
	rc.URLParams.Add("bad", "123")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))

	got, err := ParseUUIDParam(req, "userId")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = ParseUUIDParam(req, "bad")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func newMultipart(t *testing.T, fields map[string]string, file []byte) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if file != nil {
		part, err := mw.CreateFormFile("image", "a.png")
		require.NoError(t, err)
		_, err = part.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestMultipartHelpers(t *testing.T) {
	req := newMultipart(t, map[string]string{
		"name":  "  Shirt  ",
		"stock": "4",
		"price": "12.50",
		"avg":   "4.5",
		"bad":   "x",
	}, []byte("data"))
	require.NoError(t, ParseMultipartForm(httptest.NewRecorder(), req, 1<<20))

	name := FormString(req, "name")
	require.NotNil(t, name)
	assert.Equal(t, "Shirt", *name)
	assert.Nil(t, FormString(req, "missing"))

	stock, err := FormInt(req, "stock")
	require.NoError(t, err)
	assert.Equal(t, 4, *stock)

	price, err := FormDecimal(req, "price")
	require.NoError(t, err)
	assert.Equal(t, "12.5", price.String())

	avg, err := FormFloat(req, "avg")
	require.NoError(t, err)
	assert.InDelta(t, 4.5, *avg, 0.0001)

	_, err = FormInt(req, "bad")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	file, header, err := FormFile(req, "image")
	require.NoError(t, err)
	require.NotNil(t, file)
	defer file.Close()
	assert.Equal(t, "a.png", header.Filename)

	file, _, err = FormFile(req, "other")
	assert.NoError(t, err)
	assert.Nil(t, file)
}

func TestParseMultipartFormTooLarge(t *testing.T) {
	req := newMultipart(t, nil, make([]byte, 8192))
	err := ParseMultipartForm(httptest.NewRecorder(), req, 1024)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodePayloadTooLarge))
}

func TestSanitizeString(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{name: "trims", input: "  Trail Runner  ", want: "Trail Runner"},
		{name: "drops control characters", input: "Red\x00 Shoe\x07", want: "Red Shoe"},
		{name: "keeps newlines inside", input: "line one\nline two", want: "line one\nline two"},
		{name: "truncates", input: "abcdef", maxLen: 3, want: "abc"},
		{name: "does not split runes", input: "café", maxLen: 4, want: "caf"},
		{name: "no limit", input: "abcdef", maxLen: 0, want: "abcdef"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeString(tt.input, tt.maxLen))
		})
	}
}
