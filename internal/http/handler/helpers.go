package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/glowbook/salon-backend/internal/domain"
	"github.com/glowbook/salon-backend/internal/http/middleware"
	"github.com/glowbook/salon-backend/internal/repository"
)

func actorID(ctx context.Context) (uint, error) {
	claims, ok := middleware.ClaimsFromContext(ctx)
	if !ok {
		return 0, errors.New("missing auth context")
	}
	return claims.UserID, nil
}

func actorIsAdmin(ctx context.Context) bool {
	claims, ok := middleware.ClaimsFromContext(ctx)
	return ok && claims.Role == domain.RoleAdmin
}

func parsePathID(input string) (uint, error) {
	n, err := strconv.ParseUint(input, 10, 64)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, errors.New("id must be positive")
	}
	return uint(n), nil
}

func parsePageRequest(r *http.Request) (repository.PageRequest, error) {
	page := repository.DefaultPage
	pageSize := repository.DefaultPageSize
	if raw := strings.TrimSpace(r.URL.Query().Get("page")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			return repository.PageRequest{}, errors.New("page must be a positive integer")
		}
		page = v
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("pageSize")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			return repository.PageRequest{}, errors.New("pageSize must be a positive integer")
		}
		if v > repository.MaxPageSize {
			return repository.PageRequest{}, fmt.Errorf("pageSize must be <= %d", repository.MaxPageSize)
		}
		pageSize = v
	}
	return repository.PageRequest{Page: page, PageSize: pageSize}, nil
}

func paginatedData[T any](items []T, page, pageSize int, total int64, totalPages int) map[string]any {
	return map[string]any{
		"items": items,
		"pagination": map[string]any{
			"page":       page,
			"pageSize":   pageSize,
			"total":      total,
			"totalPages": totalPages,
		},
	}
}
