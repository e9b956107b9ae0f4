// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package recommend

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is. Every typed error below matches one.
var (
	ErrInputValidation    = errors.New("invalid input")
	ErrFeatureBuild       = errors.New("feature build failed")
	ErrArtifactNotFound   = errors.New("artifact not found")
	ErrEmptyTrainingSet   = errors.New("empty training set")
	ErrStorageIO          = errors.New("storage i/o failed")
	ErrTrainingInProgress = errors.New("training already in progress")
)

// InputValidationError is a malformed request. Maps to HTTP 400.
type InputValidationError struct {
	Field   string
	Message string
}

func (e *InputValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Is implements errors.Is.
func (e *InputValidationError) Is(target error) bool { return target == ErrInputValidation }

// FeatureBuildError is a single query item that could not be featurized.
// It is reported inline; sibling items are still served.
type FeatureBuildError struct {
	Index int
	Title string
	Err   error
}

func (e *FeatureBuildError) Error() string {
	return fmt.Sprintf("item %d (%q): %v", e.Index, e.Title, e.Err)
}

func (e *FeatureBuildError) Unwrap() error { return e.Err }

// Is implements errors.Is.
func (e *FeatureBuildError) Is(target error) bool { return target == ErrFeatureBuild }

// ArtifactNotFoundError means no model is available. Maps to HTTP 404.
type ArtifactNotFoundError struct {
	ContentType ContentType
	JobID       string
	Err         error
}

func (e *ArtifactNotFoundError) Error() string {
	msg := fmt.Sprintf("no trained model found for %s", e.ContentType)
	if e.JobID != "" {
		msg += " (job " + e.JobID + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ArtifactNotFoundError) Unwrap() error { return e.Err }

// Is implements errors.Is.
func (e *ArtifactNotFoundError) Is(target error) bool { return target == ErrArtifactNotFound }

// EmptyTrainingSetError aborts a run before any artifact is written.
type EmptyTrainingSetError struct {
	ContentType ContentType
	JobID       string
	Total       int
	Dropped     int
}

func (e *EmptyTrainingSetError) Error() string {
	return fmt.Sprintf("job %s: no usable %s rows (%d catalog rows, %d dropped)", e.JobID, e.ContentType, e.Total, e.Dropped)
}

// Is implements errors.Is.
func (e *EmptyTrainingSetError) Is(target error) bool { return target == ErrEmptyTrainingSet }

// StorageIOError is a failed read or write against the artifact store or
// the run registry. Fatal for the operation.
type StorageIOError struct {
	Op    string
	JobID string
	Err   error
}

func (e *StorageIOError) Error() string {
	if e.JobID != "" {
		return fmt.Sprintf("job %s: %s: %v", e.JobID, e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageIOError) Unwrap() error { return e.Err }

// Is implements errors.Is.
func (e *StorageIOError) Is(target error) bool { return target == ErrStorageIO }
