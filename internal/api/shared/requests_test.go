package shared

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Title string `json:"title" validate:"required,max=10"`
	Date  string `json:"date"  validate:"omitempty,date"`
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
		isEmpty bool
	}{
		{name: "valid", body: `{"title":"algebra","date":"2026-05-06"}`},
		{name: "trailing comma", body: `{"title":"x",}`, wantErr: true},
		{name: "unknown field", body: `{"title":"x","bogus":1}`, wantErr: true},
		{name: "empty body", body: "", wantErr: true, isEmpty: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(tc.body))
			var dst sampleRequest
			err := DecodeJSON(httptest.NewRecorder(), req, &dst)
			if !tc.wantErr {
				require.NoError(t, err)
				assert.Equal(t, "algebra", dst.Title)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tc.isEmpty, errors.Is(err, ErrEmptyBody))
		})
	}
}

func TestValidateRequest(t *testing.T) {
	require.NoError(t, ValidateRequest(&sampleRequest{Title: "ok", Date: "2026-05-06"}))

	err := ValidateRequest(&sampleRequest{Title: "", Date: "06/05/2026"})
	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	fields := map[string]string{}
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
	}
	assert.Equal(t, map[string]string{"title": "required", "date": "date"}, fields)
}

type selfValidating struct{ ok bool }

func (s selfValidating) Validate() error {
	if !s.ok {
		return errors.New("nope")
	}
	return nil
}

func TestValidateRequest_CustomValidator(t *testing.T) {
	assert.NoError(t, ValidateRequest(selfValidating{ok: true}))
	assert.EqualError(t, ValidateRequest(selfValidating{}), "nope")
}

func TestParseOptionalDate(t *testing.T) {
	d, err := ParseOptionalDate("")
	require.NoError(t, err)
	assert.Nil(t, d)

	d, err = ParseOptionalDate("2026-05-06")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 5, 6, 0, 0, 0, 0, time.UTC), *d)
	assert.Equal(t, "2026-05-06", FormatDate(*d))

	_, err = ParseOptionalDate("May 6")
	assert.Error(t, err)
}
