// Package storage reads the monthly analysis files produced by the CSV
// conversion pipeline from the object store.
package storage

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

// ErrNotFound is returned when an analysis file does not exist (yet).
var ErrNotFound = errors.New("storage: object not found")

// ObjectInfo describes one stored object.
type ObjectInfo struct {
	Name string
	Size int64
}

// ObjectStore is the single bucket holding analysis files.
type ObjectStore interface {
	Download(ctx context.Context, name string) ([]byte, error)
	List(ctx context.Context) ([]ObjectInfo, error)
}

const analysisSuffix = "_analysis.json"

// AnalysisObjectName builds "{YYYYMM}_{floorToken}_analysis.json".
func AnalysisObjectName(yearMonth, floorToken string) string {
	return fmt.Sprintf("%s_%s%s", yearMonth, floorToken, analysisSuffix)
}

var analysisName = regexp.MustCompile(`^(\d{6})_(.+)_analysis\.json$`)

// ParseAnalysisObjectName is the inverse of AnalysisObjectName.
func ParseAnalysisObjectName(name string) (yearMonth, floorToken string, ok bool) {
	m := analysisName.FindStringSubmatch(name)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}
