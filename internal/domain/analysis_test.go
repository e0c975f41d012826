package domain_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/nordlys-media/veracity/internal/domain"
)

func TestAnalysisRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr error
	}{
		{
			name:    "plain text accepted",
			text:    "Scientists confirm water is wet",
			wantErr: nil,
		},
		{
			name:    "empty rejected",
			text:    "",
			wantErr: domain.ErrEmptyText,
		},
		{
			name:    "whitespace only rejected",
			text:    " \t\n  ",
			wantErr: domain.ErrEmptyText,
		},
		{
			name:    "at limit accepted",
			text:    strings.Repeat("a", domain.MaxTextChars),
			wantErr: nil,
		},
		{
			name:    "over limit rejected",
			text:    strings.Repeat("a", domain.MaxTextChars+1),
			wantErr: domain.ErrTextTooLong,
		},
		{
			name:    "multibyte runes counted as characters",
			text:    strings.Repeat("é", domain.MaxTextChars),
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := domain.NewAnalysisRequest(tt.text)
			err := req.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewAnalysisRequest_EnablesBothSignals(t *testing.T) {
	req := domain.NewAnalysisRequest("some text")
	if !req.CrossReference || !req.Explain {
		t.Errorf("NewAnalysisRequest() = %+v, want both signals enabled", req)
	}
}
