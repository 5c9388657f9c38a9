package detector

import (
	"sort"
	"time"

	"github.com/mohammed-arif-23/it-panel-detection-service/internal/models"
)

const (
	HashMethodDescription     = "Identifies identical files by comparing cryptographic hashes"
	MetadataMethodDescription = "Examines file size, naming patterns and submission timing for suspicious clusters"
)

type Config struct {
	// MetadataWindow is the maximum spread of submission times within one
	// metadata group.
	MetadataWindow time.Duration

	// TightWindow is the spread below which temporal clustering counts as
	// strong evidence.
	TightWindow time.Duration
}

// Engine partitions a submission set into suspicious groups. Both grouping
// methods are total and deterministic: identical input yields identical
// output, including ordering, and empty input yields an empty group list.
type Engine struct {
	config Config
}

func NewEngine(config Config) *Engine {
	if config.MetadataWindow <= 0 {
		config.MetadataWindow = 24 * time.Hour
	}
	if config.TightWindow <= 0 {
		config.TightWindow = time.Hour
	}
	return &Engine{config: config}
}

// candidateGroup is a group before ids are assigned; key is the partition
// key it came from, kept for deterministic tie-breaking.
type candidateGroup struct {
	key        string
	confidence int
	reason     string
	members    []models.Submission
}

func sortMembers(members []models.Submission) {
	sort.Slice(members, func(i, j int) bool {
		if !members[i].SubmittedAt.Equal(members[j].SubmittedAt) {
			return members[i].SubmittedAt.Before(members[j].SubmittedAt)
		}
		return members[i].ID < members[j].ID
	})
}

// orderGroups fixes the output ordering: larger groups first, then earlier
// first-submission time, then the partition key and first member id so ties
// cannot flip between runs.
func orderGroups(groups []candidateGroup) {
	sort.Slice(groups, func(i, j int) bool {
		if len(groups[i].members) != len(groups[j].members) {
			return len(groups[i].members) > len(groups[j].members)
		}
		ti, tj := groups[i].members[0].SubmittedAt, groups[j].members[0].SubmittedAt
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		if groups[i].key != groups[j].key {
			return groups[i].key < groups[j].key
		}
		return groups[i].members[0].ID < groups[j].members[0].ID
	})
}
