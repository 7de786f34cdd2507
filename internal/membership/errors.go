// Copyright 2023 The Cockroach Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package membership

import (
	"fmt"

	"github.com/pkg/errors"
)

// ConfigurationError is returned when the manager is asked to operate
// against an unrecognized back-end platform. It is fatal: the caller
// should not retry without changing configuration.
type ConfigurationError struct {
	Platform string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("unknown back-end platform %q", e.Platform)
}

// IsConfigurationError returns the error if it represents a
// configuration failure.
func IsConfigurationError(err error) (cfgErr *ConfigurationError, ok bool) {
	return cfgErr, errors.As(err, &cfgErr)
}

// StoreError wraps an error propagated from the relational back-end
// (connection failure, constraint violation, deadlock). The manager
// does not classify or retry these; it only attaches a stack trace so
// the caller can log a useful diagnostic before deciding on its own
// retry policy.
type StoreError struct {
	cause error
}

func (e *StoreError) Error() string { return e.cause.Error() }

// Unwrap allows errors.Is/errors.As to see through to the underlying
// store error.
func (e *StoreError) Unwrap() error { return e.cause }

// wrapStore converts a raw driver error into a StoreError with a
// stack trace attached. A nil error passes through unchanged.
func wrapStore(err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{cause: errors.WithStack(err)}
}

// IsStoreError returns the error if it represents a store failure.
func IsStoreError(err error) (storeErr *StoreError, ok bool) {
	return storeErr, errors.As(err, &storeErr)
}

// InvariantViolation is raised when a staging-only pre-check finds an
// impossible state, e.g. multiple live committed rows sharing an
// IdentityKey. It is surfaced to callers as store-error-equivalent:
// something is wrong with the data the store returned, not with the
// caller's request.
type InvariantViolation struct {
	Detail string
	Key    IdentityKey
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("invariant violation for %+v: %s", e.Key, e.Detail)
}

// IsInvariantViolation returns the error if it represents a broken
// invariant.
func IsInvariantViolation(err error) (iv *InvariantViolation, ok bool) {
	return iv, errors.As(err, &iv)
}
