// Package modelref extracts resolvable model identifiers (file hashes and Civitai
// model version ids) from a record and resolves them against a registry.
package modelref

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/sagan/aimeta/features/civitai"
	"github.com/sagan/aimeta/features/dialect"
	"github.com/sagan/aimeta/features/jsonrepair"
)

type Kind string

const (
	KindHash      Kind = "hash"
	KindVersionID Kind = "civitaiVersionId"
)

// Label of references taken from extraMetadata.resources.
const ResourcesLabel = "Civitai resources"

// ModelReference is one resolvable identifier of a record.
type ModelReference struct {
	// Label of the model item the identifier came from.
	Label      string `json:"label"`
	Identifier string `json:"identifier"`
	Kind       Kind   `json:"kind"`
	// DisplayHint is the model name of a hash entry or the strength of a version reference.
	DisplayHint string           `json:"display_hint,omitempty"`
	Resolved    *civitai.Version `json:"resolved,omitempty"`
}

// Text is how the reference is displayed: "name: hash" for hashes,
// "<model name> (strength)" or "v<id> (strength)" for version ids.
func (r *ModelReference) Text() string {
	if r.Kind == KindHash {
		if r.DisplayHint != "" {
			return r.DisplayHint + ": " + r.Identifier
		}
		return r.Identifier
	}
	name := "v" + r.Identifier
	if r.Resolved != nil {
		name = r.Resolved.DisplayName()
	}
	if r.DisplayHint != "" {
		name += " (" + r.DisplayHint + ")"
	}
	return name
}

// Resolver looks up registry entries. *civitai.Client implements it.
type Resolver interface {
	ByHash(ctx context.Context, hash string) (*civitai.Version, error)
	ByVersionID(ctx context.Context, id int64) (*civitai.Version, error)
}

// HashEntry is one named hash of a "Model hash" / "Lora hashes" value.
type HashEntry struct {
	Name string
	Hash string
}

var (
	bareHashRe   = regexp.MustCompile(`^[a-zA-Z0-9]{6,64}$`)
	civitaiUrnRe = regexp.MustCompile(`civitai:(\d+)(?:@(\d+))?`)
)

func stripQuotes(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}

// ParseHashes parses a hash list value. Accepted forms are a single hash,
// "name: hash, name2: hash2" and a JSON object of name to hash.
func ParseHashes(value string) (entries []HashEntry) {
	str := stripQuotes(value)
	if str == "" {
		return nil
	}
	if strings.HasPrefix(str, "{") {
		if parsed, err := jsonrepair.Decode([]byte(str)); err == nil {
			if obj, ok := jsonrepair.AsObject(parsed); ok {
				obj.Range(func(name string, hash any) bool {
					entries = append(entries, HashEntry{stripQuotes(name), stripQuotes(jsonrepair.ToString(hash))})
					return true
				})
			}
			return entries
		}
	}
	for _, part := range strings.Split(str, ",") {
		part = stripQuotes(part)
		if name, hash, ok := strings.Cut(part, ":"); ok {
			if hash = stripQuotes(hash); hash != "" {
				entries = append(entries, HashEntry{stripQuotes(name), hash})
			}
		} else if bareHashRe.MatchString(part) {
			entries = append(entries, HashEntry{"", part})
		}
	}
	if len(entries) == 0 && bareHashRe.MatchString(str) {
		entries = append(entries, HashEntry{"", str})
	}
	return entries
}

// ParseCivitaiURNs returns the model version ids of every civitai:<modelId>@<versionId>
// URN in value. A URN without a version segment yields its model id.
func ParseCivitaiURNs(value string) (ids []string) {
	for _, m := range civitaiUrnRe.FindAllStringSubmatch(value, -1) {
		if m[2] != "" {
			ids = append(ids, m[2])
		} else {
			ids = append(ids, m[1])
		}
	}
	return ids
}

// FromRecord collects the references of a record: hashes of "Model hash" /
// "Lora hashes" items, Civitai URNs in other model items and extraMetadata resources.
func FromRecord(rec *dialect.Record) (refs []ModelReference) {
	for _, item := range rec.Models {
		if item.Label == "Model hash" || item.Label == "Lora hashes" {
			for _, entry := range ParseHashes(item.Value) {
				refs = append(refs, ModelReference{Label: item.Label, Identifier: entry.Hash, Kind: KindHash,
					DisplayHint: entry.Name})
			}
			continue
		}
		for _, id := range ParseCivitaiURNs(item.Value) {
			refs = append(refs, ModelReference{Label: item.Label, Identifier: id, Kind: KindVersionID})
		}
	}
	for _, res := range rec.Resources {
		refs = append(refs, ModelReference{Label: ResourcesLabel, Identifier: res.VersionID, Kind: KindVersionID,
			DisplayHint: res.Strength})
	}
	return refs
}

// ResolveAll resolves every reference concurrently, at most jobs at a time (0 means
// no limit). A failed lookup leaves its reference unresolved and does not affect
// the others. It returns the number of resolved references.
func ResolveAll(ctx context.Context, refs []ModelReference, resolver Resolver, jobs int) int {
	g := &errgroup.Group{}
	if jobs > 0 {
		g.SetLimit(jobs)
	}
	resolved := make([]bool, len(refs))
	for i := range refs {
		ref := &refs[i]
		g.Go(func() error {
			var v *civitai.Version
			var err error
			switch ref.Kind {
			case KindHash:
				v, err = resolver.ByHash(ctx, ref.Identifier)
			case KindVersionID:
				var id int64
				id, err = strconv.ParseInt(ref.Identifier, 10, 64)
				if err == nil {
					v, err = resolver.ByVersionID(ctx, id)
				}
			}
			if err != nil {
				log.Debugf("failed to resolve %s %s: %v", ref.Kind, ref.Identifier, err)
				return nil
			}
			ref.Resolved = v
			resolved[i] = true
			return nil
		})
	}
	g.Wait()
	n := 0
	for _, ok := range resolved {
		if ok {
			n++
		}
	}
	return n
}
