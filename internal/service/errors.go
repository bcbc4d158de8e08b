package service

import (
    "errors"
    "fmt"

    "github.com/d60-Lab/groupfeed/internal/auth"
    "github.com/d60-Lab/groupfeed/internal/repository"
)

var (
    ErrUnauthenticated = errors.New("authentication required")
    ErrForbidden       = errors.New("forbidden")
    ErrNotFound        = errors.New("not found")
    ErrInvalidInput    = errors.New("invalid input")
    ErrConflict        = errors.New("conflict")
)

func invalid(format string, args ...interface{}) error {
    return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// translate 将仓储层错误映射为服务层错误
func translate(err error) error {
    switch {
    case err == nil:
        return nil
    case repository.IsNotFound(err):
        return ErrNotFound
    case errors.Is(err, repository.ErrDuplicate):
        return fmt.Errorf("%w: %w", ErrConflict, err)
    default:
        return err
    }
}

func requireIdentity(id auth.Identity) error {
    if id.ID == "" {
        return ErrUnauthenticated
    }
    return nil
}

func requireAdmin(id auth.Identity) error {
    if err := requireIdentity(id); err != nil {
        return err
    }
    if !id.IsAdmin() {
        return ErrForbidden
    }
    return nil
}
