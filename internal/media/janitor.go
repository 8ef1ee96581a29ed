package media

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// MessageRefs answers whether any persisted message still references an
// uploaded object's URL.
type MessageRefs interface {
	ImageURLInUse(ctx context.Context, url string) (bool, error)
}

// Janitor periodically deletes uploads that no message references. Upload
// and message write are two sequential operations with no transaction, so
// a failed send after a successful upload leaves the object behind; the
// sweep reclaims it once the grace period has passed.
type Janitor struct {
	objects ObjectStore
	refs    MessageRefs
	grace   time.Duration
	cron    *cron.Cron
}

func NewJanitor(objects ObjectStore, refs MessageRefs, grace time.Duration) *Janitor {
	return &Janitor{
		objects: objects,
		refs:    refs,
		grace:   grace,
		cron:    cron.New(cron.WithSeconds()),
	}
}

// Start schedules the sweep. spec uses the six-field cron format.
func (j *Janitor) Start(spec string) error {
	_, err := j.cron.AddFunc(spec, func() {
		if err := j.Sweep(context.Background()); err != nil {
			log.Printf("[media] sweep failed: %v", err)
		}
	})
	if err != nil {
		return err
	}

	log.Printf("[media] janitor scheduled (%s, grace %s)", spec, j.grace)
	j.cron.Start()
	return nil
}

func (j *Janitor) Stop() {
	j.cron.Stop()
}

// Sweep removes unreferenced chat images older than the grace period. The
// grace window keeps it from racing an upload whose message is still being
// written.
func (j *Janitor) Sweep(ctx context.Context) error {
	objects, err := j.objects.List(ctx, imageKeyPrefix)
	if err != nil {
		return err
	}

	cutoff := time.Now().Add(-j.grace)
	removed := 0
	for _, obj := range objects {
		if obj.Created.After(cutoff) {
			continue
		}

		url, err := j.objects.DownloadURL(ctx, obj.Key)
		if err != nil {
			log.Printf("[media] sweep: resolve %s: %v", obj.Key, err)
			continue
		}

		inUse, err := j.refs.ImageURLInUse(ctx, url)
		if err != nil {
			log.Printf("[media] sweep: check %s: %v", obj.Key, err)
			continue
		}
		if inUse {
			continue
		}

		if err := j.objects.Delete(ctx, obj.Key); err != nil {
			log.Printf("[media] sweep: delete %s: %v", obj.Key, err)
			continue
		}
		removed++
	}

	if removed > 0 {
		log.Printf("[media] sweep removed %d orphaned upload(s)", removed)
	}
	return nil
}
