// Copyright 2019 eBay Inc.
// Primary authors: Simon Fell, Diego Ongaro,
//                  Raymond Kroeker, and Sathish Kandasamy.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ancestor

import (
	"context"

	"github.com/davecgh/go-spew/spew"
	"github.com/ebay/patterntype/classes"
	"github.com/ebay/patterntype/patterns"
	"github.com/ebay/patterntype/superclass"
	opentracing "github.com/opentracing/opentracing-go"
	log "github.com/sirupsen/logrus"
)

// DefaultMaxDepth is the number of levels climbed before giving up on a
// pattern, when NewSearcher is given no limit.
const DefaultMaxDepth = 50

// Resolver is satisfied by *superclass.Engine.
type Resolver interface {
	Resolve(ctx context.Context, ids []classes.ID) (superclass.Resolution, error)
}

// Searcher finds common ancestors for patterns.
type Searcher struct {
	engine   Resolver
	known    KnownClasses
	maxDepth int
}

// NewSearcher returns a Searcher that climbs with engine and computes the
// class distribution with known. A maxDepth <= 0 means DefaultMaxDepth.
func NewSearcher(engine Resolver, known KnownClasses, maxDepth int) *Searcher {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Searcher{engine: engine, known: known, maxDepth: maxDepth}
}

// climb tracks the hierarchy expansion from one class combination.
type climb struct {
	levels []*classes.Set
	// The union of levels.
	reached *classes.Set
	// The classes first reached at the last level. Only these need their
	// superclasses looked up for the next level.
	frontier []classes.ID
}

func newClimb(own *classes.Set) *climb {
	return &climb{
		levels:   []*classes.Set{own},
		reached:  own.Clone(),
		frontier: own.Slice(),
	}
}

// extend appends the superclasses of the frontier as a new level.
func (c *climb) extend(supers map[classes.ID][]classes.ID) {
	next := classes.NewSet()
	for _, class := range c.frontier {
		next.AddAll(supers[class])
	}
	c.levels = append(c.levels, next)
	c.frontier = c.reached.Merge(next)
}

// FindCommonAncestor searches for the common ancestors of p's distinct
// class combinations. Items without classes only count towards the class
// distribution. Patterns whose items have no classes at all are modeling
// errors with no offending class.
//
// A TooNew, ModelingError or DepthExceeded result is a normal Outcome; the
// returned error is set only if ctx was canceled.
func (s *Searcher) FindCommonAncestor(ctx context.Context, p *patterns.Pattern) (Outcome, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "FindCommonAncestor")
	span.SetTag("pattern", p.Key)
	defer span.Finish()
	out, err := s.find(ctx, p)
	if err != nil {
		span.SetTag("error", true)
		return Outcome{}, err
	}
	out.Distribution = Distribution(p.ItemIDs(), s.known)
	span.SetTag("outcome", out.Kind.String())
	return out, nil
}

func (s *Searcher) find(ctx context.Context, p *patterns.Pattern) (Outcome, error) {
	logger := log.WithField("pattern", p.Key)
	groups := p.Groups()
	if len(groups) == 0 {
		logger.Warn("Pattern has no classes")
		return Outcome{Kind: ModelingError}, nil
	}
	byCombination := make(map[classes.Combination]int, len(groups))
	own := make([]*classes.Set, len(groups))
	all := classes.NewSet()
	for i, g := range groups {
		byCombination[g.Classes] = g.Count
		own[i] = g.Classes.Set()
		all.Merge(own[i])
	}

	if common := classes.Intersect(own...); common.Len() > 0 {
		logger.WithField("classes", common).Debug("Found perfect pattern")
		return Outcome{
			Kind:       PerfectMatch,
			Candidates: Perfect(common.Slice()),
			Groups:     byCombination,
		}, nil
	}

	res, err := s.engine.Resolve(ctx, all.Slice())
	if err != nil {
		return Outcome{}, err
	}
	if res.TooNew {
		logger.WithField("classes", res.TooNewIDs).Info("Pattern has classes newer than the snapshot")
		return Outcome{Kind: TooNew, Offending: res.TooNewIDs}, nil
	}
	if res.ModelingError {
		logger.WithField("classes", res.ModelingErrorIDs).Info("Pattern has classes without superclasses")
		return Outcome{Kind: ModelingError, Offending: res.ModelingErrorIDs}, nil
	}
	climbs := make([]*climb, len(groups))
	for i := range groups {
		climbs[i] = newClimb(own[i])
		climbs[i].extend(res.Superclasses)
	}

	// The first climb, to level 1, is done.
	for climbed := 1; ; climbed++ {
		reached := make([]*classes.Set, len(climbs))
		for i, c := range climbs {
			reached[i] = c.reached
		}
		if common := classes.Intersect(reached...); common.Len() > 0 {
			return s.resolved(logger, groups, climbs, common, byCombination), nil
		}
		if climbed >= s.maxDepth {
			logger.WithField("levels", climbed).Info("Pattern exceeded the depth limit")
			return Outcome{Kind: DepthExceeded, LevelsClimbed: climbed}, nil
		}
		if err := ctx.Err(); err != nil {
			return Outcome{}, err
		}
		frontier := classes.NewSet()
		for _, c := range climbs {
			frontier.AddAll(c.frontier)
		}
		res, err := s.engine.Resolve(ctx, frontier.Slice())
		if err != nil {
			return Outcome{}, err
		}
		if res.TooNew {
			// Only classes reached through an instance-of lookup can be too
			// new at this point.
			logger.WithFields(log.Fields{
				"classes": res.TooNewIDs,
				"level":   climbed + 1,
			}).Info("Climb reached classes newer than the snapshot")
			return Outcome{Kind: TooNew}, nil
		}
		for _, c := range climbs {
			c.extend(res.Superclasses)
		}
	}
}

func (s *Searcher) resolved(
	logger *log.Entry,
	groups []patterns.Group,
	climbs []*climb,
	common *classes.Set,
	byCombination map[classes.Combination]int,
) Outcome {
	levels := make([][]*classes.Set, len(climbs))
	hier := make([]CombinationHierarchy, len(climbs))
	for i, c := range climbs {
		levels[i] = c.levels
		hier[i] = CombinationHierarchy{
			Classes: groups[i].Classes,
			Count:   groups[i].Count,
			Levels:  make([][]classes.ID, len(c.levels)),
		}
		for l, level := range c.levels {
			hier[i].Levels[l] = level.Slice()
		}
	}
	counts := make([]int, len(groups))
	for i, g := range groups {
		counts[i] = g.Count
	}
	out := Outcome{
		Kind:       Resolved,
		Candidates: Score(common.Slice(), levels, counts),
		Hierarchy:  hier,
		Groups:     byCombination,
	}
	best, _ := out.Best()
	logger.WithFields(log.Fields{
		"best":       best.Class,
		"weight":     best.Weight,
		"candidates": len(out.Candidates),
	}).Debug("Found common ancestor")
	if logger.Logger.IsLevelEnabled(log.DebugLevel) {
		logger.Debugf("Hierarchy:\n%s", spew.Sdump(hier))
	}
	return out
}
