package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrExtractionFailed is returned when spec extraction from a quote fails
	ErrExtractionFailed = errors.New("specification extraction failed")

	// ErrNoSections is returned when an extracted quote contains no sections
	ErrNoSections = errors.New("quote contains no sections")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheUnavailable is returned when the cache service is unavailable
	ErrCacheUnavailable = errors.New("cache service unavailable")

	// ErrOpenAIAPIFailure is returned when an Azure OpenAI request fails
	ErrOpenAIAPIFailure = errors.New("openai API request failed")

	// ErrSearchAPIFailure is returned when an Azure AI Search request fails
	ErrSearchAPIFailure = errors.New("search API request failed")

	// ErrPDFExtraction is returned when no text can be pulled from a PDF
	ErrPDFExtraction = errors.New("pdf text extraction failed")

	// ErrPatternStoreUnavailable is returned when the pattern log cannot be read or written
	ErrPatternStoreUnavailable = errors.New("pattern store unavailable")
)

// AssemblyNotFoundError is returned by BOM lookups for unknown assembly
// numbers. It enumerates the valid ids so callers can surface them directly.
type AssemblyNotFoundError struct {
	AssemblyNumber      string   `json:"-"`
	AvailableAssemblies []string `json:"available_assemblies"`
}

func (e *AssemblyNotFoundError) Error() string {
	return fmt.Sprintf("assembly %s not found (available: %s)",
		e.AssemblyNumber, strings.Join(e.AvailableAssemblies, ", "))
}
