package validators

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	pkgerrors "github.com/kisanmandi/mandi-backend/pkg/errors"
)

type bidBody struct {
	Amount  string `json:"amount" validate:"required,decimal"`
	Version *int64 `json:"expected_version"`
}

func TestDecodeJSONBodyValidatesDecimals(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"amount":"-5"}`))
	var body bidBody
	err := DecodeJSONBody(req, &body)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
	require.Equal(t, map[string]string{"amount": "must be a positive decimal"}, typed.Details())

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"amount":"101.50","expected_version":3}`))
	require.NoError(t, DecodeJSONBody(req, &body))
	amount, err := ParseDecimal("amount", body.Amount)
	require.NoError(t, err)
	require.Equal(t, "101.5", amount.String())
	require.EqualValues(t, 3, *body.Version)
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"amount":"10","bogus":true}`))
	var body bidBody
	require.True(t, pkgerrors.IsValidation(DecodeJSONBody(req, &body)))
}

func TestDecodeJSONBodyRejectsMalformedBodies(t *testing.T) {
	cases := map[string]string{
		"empty":    ``,
		"trailing": `{"amount":"10"}{"amount":"11"}`,
		"too big":  `{"amount":"` + strings.Repeat("9", MaxBodyBytes) + `"}`,
	}
	for name, raw := range cases {
		var body bidBody
		err := DecodeJSONBody(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(raw)), &body)
		require.True(t, pkgerrors.IsValidation(err), name)
	}
}

func TestDecodeJSONBodyNamesMistypedField(t *testing.T) {
	var body bidBody
	err := DecodeJSONBody(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"amount":"10","expected_version":"three"}`)), &body)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, map[string]string{"expected_version": "must be of type int64"}, typed.Details())
}

func TestParseQueryInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=500", nil)
	_, err := ParseQueryInt(req, "limit", 20, 1, 100)
	require.True(t, pkgerrors.IsValidation(err))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	value, err := ParseQueryInt(req, "limit", 20, 1, 100)
	require.NoError(t, err)
	require.Equal(t, 20, value)
}

func TestParseOptionalDecimal(t *testing.T) {
	value, err := ParseOptionalDecimal("min_increment", " ")
	require.NoError(t, err)
	require.Nil(t, value)

	_, err = ParseOptionalDecimal("min_increment", "abc")
	require.True(t, pkgerrors.IsValidation(err))
}

func TestParseQueryIntRejectsText(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=ten", nil)
	_, err := ParseQueryInt(req, "limit", 20, 1, 100)
	require.True(t, pkgerrors.IsValidation(err))
	require.Equal(t, map[string]any{"field": "limit"}, pkgerrors.As(err).Details())
}

func TestSanitizeStringCapsRunes(t *testing.T) {
	require.Equal(t, "गेहूँ", SanitizeString("  गेहूँ \x00", 0))
	require.Equal(t, "ab", SanitizeString("abc", 2))
	require.Equal(t, "line one\nline two", SanitizeString("line one\nline two\x07", 100))
	require.Equal(t, "godown 4", SanitizeString("\x1b godown 4 \t\x00", 0))
}

func TestNormalizeCropType(t *testing.T) {
	require.Equal(t, "basmati rice", NormalizeCropType("  Basmati \t Rice "))
	req := httptest.NewRequest(http.MethodGet, "/?crop_type=WHEAT", nil)
	require.Equal(t, "wheat", QueryCropType(req))
	require.Empty(t, QueryCropType(httptest.NewRequest(http.MethodGet, "/", nil)))
}
