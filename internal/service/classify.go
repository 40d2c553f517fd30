package service

import (
	"context"
	"errors"
	"io/fs"
	"net"

	"imagefetcher/internal/core/domain"
)

// classify maps an error from any pipeline stage onto the failure taxonomy.
func classify(err error) domain.ErrorKind {
	var (
		statusErr *domain.HTTPStatusError
		validErr  *domain.ValidationError
		netErr    net.Error
		opErr     *net.OpError
		dnsErr    *net.DNSError
		pathErr   *fs.PathError
	)

	switch {
	case err == nil:
		return ""
	case errors.As(err, &statusErr):
		return domain.ErrKindHTTPStatus
	case errors.As(err, &validErr):
		return domain.ErrKindValidation
	case errors.Is(err, context.Canceled):
		return domain.ErrKindCancelled
	case errors.Is(err, domain.ErrInsufficientSpace), errors.As(err, &pathErr):
		return domain.ErrKindFilesystem
	case errors.Is(err, context.DeadlineExceeded):
		return domain.ErrKindTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		return domain.ErrKindTimeout
	case errors.As(err, &opErr), errors.As(err, &dnsErr):
		return domain.ErrKindConnection
	default:
		return domain.ErrKindUnexpected
	}
}

// describe renders a console-friendly reason for a failure.
func describe(kind domain.ErrorKind, err error) string {
	switch kind {
	case domain.ErrKindTimeout:
		return "Request timed out: " + err.Error()
	case domain.ErrKindConnection:
		return "Connection error, check your network: " + err.Error()
	case domain.ErrKindFilesystem:
		return "File system error: " + err.Error()
	case domain.ErrKindValidation, domain.ErrKindHTTPStatus:
		return err.Error()
	case domain.ErrKindCancelled:
		return "Cancelled"
	default:
		return "Unexpected error: " + err.Error()
	}
}
