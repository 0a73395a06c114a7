package tracker

import (
	"context"
	"fmt"
	"strings"

	"github.com/apk-metadata/apk-metadata-go/internal/catalog"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Result summarizes one import run.
type Result struct {
	Fetched         int
	Added           int
	SkippedExisting int // a fragment already covered by a local detector
	SkippedNameOnly int // same detector name, pattern not covered locally
	SkippedNoise    int // no usable fragments
	Sections        []catalog.SectionID
}

// Importer folds remote tracker descriptors into the kit catalog. This
// is an administrative operation, run rarely and never concurrently with
// record resets: the append and the catalog read race on the same file.
type Importer struct {
	feed   *FeedClient
	loader *catalog.Loader
	logger *logrus.Logger
}

func NewImporter(feed *FeedClient, loader *catalog.Loader, logger *logrus.Logger) *Importer {
	return &Importer{
		feed:   feed,
		loader: loader,
		logger: logger,
	}
}

// ImportAndMerge fetches the remote list and appends genuinely new
// detectors to the kit catalog's backing file. A feed failure aborts the
// whole run before any write; a failed append propagates unmodified.
//
// Per descriptor, the first decisive branch wins and at most one section
// is appended:
//  1. a canonical fragment already present under any section means an
//     existing detector covers it; skip, never silently widen.
//  2. the canonical name already being a section means our local pattern
//     is narrower or stale; warn so an operator widens it by hand, skip.
//  3. otherwise append a new section.
func (imp *Importer) ImportAndMerge(ctx context.Context) (*Result, error) {
	log := imp.logger.WithField("import_run", uuid.NewString()[:8])

	kit, err := imp.loader.Load(catalog.CategoryKit)
	if err != nil {
		return nil, fmt.Errorf("load kit catalog: %w", err)
	}

	descriptors, err := imp.feed.Fetch(ctx)
	if err != nil {
		log.WithError(err).Warn("Cannot download tracker feed, aborting import")
		return nil, err
	}

	result := &Result{Fetched: len(descriptors)}
	var pending []catalog.NewSection
	pendingIDs := make(map[catalog.SectionID]struct{})

	for _, d := range descriptors {
		frags := CanonicalFragments(d.CodeSignature)
		if len(frags) == 0 {
			result.SkippedNoise++
			log.WithField("tracker", d.Name).Debug("Descriptor has no usable fragments, skipping")
			continue
		}

		for _, frag := range frags {
			if kit.ContainsPattern(frag) {
				result.SkippedExisting++
				log.WithFields(logrus.Fields{
					"tracker": d.Name,
					"pattern": frag,
				}).Debug("Pattern already present, not adding tracker")
				break
			}

			name := CanonicalName(d.Name)
			if name == "" {
				log.WithField("tracker", d.Name).Warn("Tracker name has no usable characters, skipping")
				break
			}
			id := catalog.SectionID(name)

			if kit.HasSection(id) {
				// Same logical detector, but the remote knows a pattern we
				// don't. Overwriting would risk weakening the local
				// detector; an operator widens it by hand instead.
				result.SkippedNameOnly++
				pattern, _ := kit.PatternOf(id)
				log.WithFields(logrus.Fields{
					"name":    name,
					"sig":     frag,
					"pattern": pattern,
				}).Debug("Local pattern is narrower than remote")
				log.Warnf("You should add pattern=%s in tracker=%s", frag, d.Name)
				break
			}

			if _, dup := pendingIDs[id]; dup {
				log.WithField("name", name).Debug("Already queued in this run, skipping")
				break
			}

			log.WithField("name", name).Debug("Adding Exodus tracker")
			pending = append(pending, catalog.NewSection{
				ID:          id,
				Description: fmt.Sprintf("%s (from ETIP Exodus Privacy list)", d.Name),
				Pattern:     strings.Join(frags, "|"),
			})
			pendingIDs[id] = struct{}{}
			result.Added++
			result.Sections = append(result.Sections, id)
			break
		}
	}

	if len(pending) > 0 {
		path, err := imp.loader.Path(catalog.CategoryKit)
		if err != nil {
			return nil, err
		}
		log.WithFields(logrus.Fields{
			"count": len(pending),
			"file":  path,
		}).Debug("Appending imported trackers to kit catalog")
		if err := catalog.AppendSections(path, pending); err != nil {
			return nil, err
		}
	}

	log.WithFields(logrus.Fields{
		"fetched":           result.Fetched,
		"added":             result.Added,
		"skipped_existing":  result.SkippedExisting,
		"skipped_name_only": result.SkippedNameOnly,
		"skipped_noise":     result.SkippedNoise,
	}).Info("Tracker import completed")

	return result, nil
}
