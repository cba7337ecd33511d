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

// Package superclass finds the direct superclasses of a batch of classes,
// using the hierarchy snapshot where it can and the remote instance-of
// lookup where the snapshot records nothing.
package superclass

import (
	"context"

	"github.com/ebay/patterntype/classes"
	"github.com/ebay/patterntype/hierarchy"
	"github.com/ebay/patterntype/remote"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Index is the subset of *hierarchy.Index used by the Engine.
type Index interface {
	SuperclassesOf(class classes.ID) (hierarchy.Lookup, []classes.ID)
}

// InstanceOfResolver is the subset of *remote.Resolver used by the Engine.
type InstanceOfResolver interface {
	InstanceOf(ctx context.Context, id classes.ID) ([]classes.ID, error)
}

// Resolution is the result of Engine.Resolve.
type Resolution struct {
	// The direct superclasses (or, failing that, instance-of classes) of
	// each input class that resolved to a non-empty list. Lists are sorted.
	Superclasses map[classes.ID][]classes.ID
	// Set if any input class is newer than the snapshot.
	TooNew bool
	// Set if any input class has neither a superclass nor an instance-of
	// class.
	ModelingError bool
	// The classes behind TooNew and ModelingError, sorted.
	TooNewIDs        []classes.ID
	ModelingErrorIDs []classes.ID
}

// Engine resolves superclasses for batches of classes.
type Engine struct {
	index  Index
	remote InstanceOfResolver
}

// New returns an Engine that consults index first and remote for classes the
// index has no superclasses for.
func New(index Index, remote InstanceOfResolver) *Engine {
	return &Engine{index: index, remote: remote}
}

// Resolve looks up the direct superclasses of every class in ids. Each class
// falls in one of three buckets:
//   - newer than the snapshot: the class is too new;
//   - in the snapshot without superclasses: the remote instance-of lookup
//     is tried, and an empty (or abandoned) answer is a modeling error;
//   - in the snapshot with superclasses: those are used.
//
// If any class is too new, Resolve returns right away with TooNew set and
// without any remote lookups. Otherwise every remote lookup is made before
// ModelingError is reported, and Superclasses holds everything that did
// resolve. An *remote.ExhaustedError from the resolver counts as an empty
// answer; any other resolver error (for a *remote.Resolver, only a context
// error) is returned.
func (e *Engine) Resolve(ctx context.Context, ids []classes.ID) (Resolution, error) {
	ids = classes.Dedup(append([]classes.ID(nil), ids...))
	res := Resolution{Superclasses: make(map[classes.ID][]classes.ID, len(ids))}
	var fallback []classes.ID
	for _, id := range ids {
		lookup, supers := e.index.SuperclassesOf(id)
		switch lookup {
		case hierarchy.NoneRecorded:
			res.TooNewIDs = append(res.TooNewIDs, id)
		case hierarchy.Empty:
			fallback = append(fallback, id)
		case hierarchy.Found:
			res.Superclasses[id] = supers
		}
	}
	if len(res.TooNewIDs) > 0 {
		res.TooNew = true
		log.WithField("classes", res.TooNewIDs).Debug("Classes are newer than the hierarchy snapshot")
		return res, nil
	}
	for _, id := range fallback {
		instances, err := e.remote.InstanceOf(ctx, id)
		if err != nil {
			var exhausted *remote.ExhaustedError
			if !errors.As(err, &exhausted) {
				return Resolution{}, err
			}
			log.WithError(err).WithField("class", id).Warn("Treating abandoned lookup as a modeling error")
		}
		if len(instances) == 0 {
			res.ModelingErrorIDs = append(res.ModelingErrorIDs, id)
			continue
		}
		sorted := classes.Dedup(append([]classes.ID(nil), instances...))
		res.Superclasses[id] = sorted
	}
	if len(res.ModelingErrorIDs) > 0 {
		res.ModelingError = true
		log.WithField("classes", res.ModelingErrorIDs).Debug("Classes have no superclass or instance-of class")
	}
	return res, nil
}

// All returns the union of every list in Superclasses, sorted.
func (r *Resolution) All() []classes.ID {
	set := classes.NewSet()
	for _, supers := range r.Superclasses {
		set.AddAll(supers)
	}
	return set.Slice()
}
