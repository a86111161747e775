package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/riskibarqy/football-brain/internal/usecase"
)

func TestMapError_ClassifiesSentinels(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"validation", fmt.Errorf("%w: bad input", usecase.ErrValidation), http.StatusBadRequest},
		{"unauthorized", fmt.Errorf("%w: no token", usecase.ErrUnauthorized), http.StatusUnauthorized},
		{"forbidden", fmt.Errorf("%w: not yours", usecase.ErrForbidden), http.StatusForbidden},
		{"notFound", fmt.Errorf("%w: gone", usecase.ErrNotFound), http.StatusNotFound},
		{"conflict", fmt.Errorf("%w: dup", usecase.ErrConflict), http.StatusBadRequest},
		{"infra", fmt.Errorf("%w: db down", usecase.ErrInfra), http.StatusServiceUnavailable},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError},
		{"unclassifiedConnectionRefused", fmt.Errorf("get squad: dial tcp 10.0.0.1:5432: connect: connection refused"), http.StatusServiceUnavailable},
		{"unclassifiedMissingRelation", fmt.Errorf("list members: pq: relation \"squad_members\" does not exist"), http.StatusServiceUnavailable},
		{"unclassifiedAuthFailure", fmt.Errorf("open postgres connection: pq: password authentication failed for user \"app\""), http.StatusServiceUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mapped := mapError(context.Background(), tc.err)
			if mapped.HTTPStatus != tc.wantStatus {
				t.Fatalf("expected status %d, got %d", tc.wantStatus, mapped.HTTPStatus)
			}
		})
	}
}

func TestMapError_InfraHidesInternalDetail(t *testing.T) {
	mapped := mapError(context.Background(), fmt.Errorf("%w: connection refused to 10.0.0.1:5432", usecase.ErrInfra))
	if mapped.PublicMessage != "dependency unavailable" {
		t.Fatalf("expected generic public message for infra errors, got %q", mapped.PublicMessage)
	}
}

func TestMapError_ValidationSurfacesDetail(t *testing.T) {
	mapped := mapError(context.Background(), fmt.Errorf("%w: player_id is required", usecase.ErrValidation))
	if mapped.PublicMessage == "" {
		t.Fatalf("expected validation message to surface detail")
	}
}
