package activity

import "time"

// Lifecycle verbs emitted by the fixtures core.
const (
	VerbInstantiated = "fixture.instantiated"
	VerbPersisted    = "fixture.persisted"
	VerbRemoved      = "fixture.removed"
	VerbStoryBuilt   = "story.built"
)

// FixtureEventInput describes the fields common to fixture lifecycle events.
type FixtureEventInput struct {
	Kind       string
	ObjectID   string
	Story      string
	Attributes map[string]any
	OccurredAt time.Time
}

// BuildInstantiatedEvent constructs a normalized event for object creation.
func BuildInstantiatedEvent(input FixtureEventInput) Event {
	return buildFixtureEvent(VerbInstantiated, input)
}

// BuildPersistedEvent constructs a normalized event for a store save.
func BuildPersistedEvent(input FixtureEventInput) Event {
	return buildFixtureEvent(VerbPersisted, input)
}

// BuildRemovedEvent constructs a normalized event for a store delete.
func BuildRemovedEvent(input FixtureEventInput) Event {
	return buildFixtureEvent(VerbRemoved, input)
}

// BuildStoryBuiltEvent constructs a normalized event for a story build.
func BuildStoryBuiltEvent(story string, occurredAt time.Time) Event {
	return Event{
		Verb:       VerbStoryBuilt,
		Kind:       "story",
		ObjectID:   story,
		Story:      story,
		OccurredAt: occurredAt,
	}
}

func buildFixtureEvent(verb string, input FixtureEventInput) Event {
	var metadata map[string]any
	if len(input.Attributes) > 0 {
		metadata = map[string]any{"attributes": cloneMap(input.Attributes)}
	}
	objectID := input.ObjectID
	if objectID == "" {
		objectID = input.Kind
	}
	return Event{
		Verb:       verb,
		Kind:       input.Kind,
		ObjectID:   objectID,
		Story:      input.Story,
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}
