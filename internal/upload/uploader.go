// Package upload runs one classification per picked photo and reports its progress as
// an ordered stream of outcomes.
package upload

import (
	"context"
	"log"
	"time"

	"github.com/jask/foodcalorie/internal/classify"
	"github.com/jask/foodcalorie/internal/picker"
	"github.com/jask/foodcalorie/internal/result"
)

// Uploader sends photos to a classifier.
type Uploader struct {
	Classifier classify.Classifier
	Timeout    time.Duration
}

// Upload starts classifying f and returns its outcome stream: Loading, then exactly one
// terminal outcome, then the channel is closed. Cancelling ctx ends the call early and
// the terminal outcome reports the cancellation.
func (u *Uploader) Upload(ctx context.Context, f picker.File) <-chan result.Outcome {
	out := make(chan result.Outcome, 2)
	out <- result.Loading{}
	go func() {
		defer close(out)
		if u.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, u.Timeout)
			defer cancel()
		}
		start := time.Now()
		preds, err := u.Classifier.Classify(ctx, f)
		o := classify.Outcome(preds, err)
		log.Printf("debug: %s classified %s in %s: %s", u.Classifier.Name(), f.Name, time.Since(start).Round(time.Millisecond), result.Name(o))
		if err != nil {
			log.Printf("debug: classify %s: %v", f.Name, err)
		}
		out <- o
	}()
	return out
}
