// Bookgraph - Book Recommendation Catalog and Discovery Engine
// Copyright 2026 Bookgraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookgraph/bookgraph

// Package validation wraps go-playground/validator with the custom
// rules the request types use.
package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/bookgraph/bookgraph/internal/models"
)

var (
	instance *validator.Validate
	once     sync.Once
)

// Get returns the shared validator instance.
func Get() *validator.Validate {
	once.Do(func() {
		instance = validator.New(validator.WithRequiredStructEnabled())

		// archetype validates against the closed recommender-type set.
		_ = instance.RegisterValidation("archetype", func(fl validator.FieldLevel) bool {
			_, ok := models.ParseArchetype(fl.Field().String())
			return ok
		})
	})
	return instance
}

// Struct validates a struct and returns a single readable error.
func Struct(v interface{}) error {
	err := Get().Struct(v)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return err
	}

	msgs := make([]string, 0, len(errs))
	for _, fe := range errs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "archetype":
		return fmt.Sprintf("%s must be one of the known archetypes", fe.Field())
	case "max":
		return fmt.Sprintf("%s accepts at most %s entries", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s needs at least %s entries", fe.Field(), fe.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", fe.Field())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}
