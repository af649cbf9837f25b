package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{Unauthorized("no session"), http.StatusUnauthorized},
		{Forbidden("admin only"), http.StatusForbidden},
		{NotFound("client profile not found"), http.StatusNotFound},
		{InvalidArgument("invalid document type"), http.StatusBadRequest},
		{Conflict("profile exists"), http.StatusConflict},
		{GenerationFailed(errors.New("boom"), "generate"), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
		{fmt.Errorf("wrapped: %w", NotFound("x")), http.StatusNotFound},
	}
	for _, tc := range cases {
		if got := Status(tc.err); got != tc.want {
			t.Errorf("Status(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestPublicMessageHidesServerErrors(t *testing.T) {
	err := GenerationFailed(errors.New("provider said: secret prompt"), "generate document")
	if got := PublicMessage(err, "Failed to generate document"); got != "Failed to generate document" {
		t.Fatalf("unexpected message %q", got)
	}
	if !errors.Is(err, ErrGenerationFailed) {
		t.Fatalf("expected ErrGenerationFailed")
	}

	nf := NotFound("Client profile not found")
	if got := PublicMessage(nf, "x"); got != "Client profile not found" {
		t.Fatalf("unexpected message %q", got)
	}
}
