package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlan(t *testing.T) {
	tests := []struct {
		name      string
		size      int64
		threshold int64
		opts      Options
		wantMode  transferMode
		wantTh    int
	}{
		{name: "below threshold", size: 10, threshold: 100, wantMode: transferSimple},
		{name: "at threshold stays simple", size: 100, threshold: 100, wantMode: transferSimple},
		{name: "one past threshold", size: 101, threshold: 100, wantMode: transferMultipart},
		{name: "unknown size stays simple", size: -1, threshold: 100, wantMode: transferSimple},
		{name: "zero size stays simple", size: 0, threshold: 100, wantMode: transferSimple},
		{name: "thread count only matters for multipart", size: 10, threshold: 100, opts: Options{"thread_count": 4}, wantMode: transferSimple},
		{name: "explicit thread count", size: 200, threshold: 100, opts: Options{"thread_count": 4}, wantMode: transferMultipart, wantTh: 4},
		{name: "no thread count defers to client", size: 200, threshold: 100, wantMode: transferMultipart, wantTh: 0},
		{name: "non-positive thread count ignored", size: 200, threshold: 100, opts: Options{"thread_count": -2}, wantMode: transferMultipart, wantTh: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := plan(tt.size, tt.threshold, tt.opts)
			assert.Equal(t, tt.wantMode, p.mode)
			assert.Equal(t, tt.wantTh, p.threads)
		})
	}
}

func TestPlan_IndependentThresholds(t *testing.T) {
	// A size that crosses the default upload threshold must not cross the
	// default copy threshold.
	size := DefaultUploadThreshold + 1
	assert.Equal(t, transferMultipart, plan(size, DefaultUploadThreshold, nil).mode)
	assert.Equal(t, transferSimple, plan(size, DefaultCopyThreshold, nil).mode)
}
