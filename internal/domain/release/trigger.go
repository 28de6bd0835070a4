package release

import "os"

// EventPush is the CI event name of a direct push.
const EventPush = "push"

// branchRefPrefix is how CI spells fully-qualified branch references.
const branchRefPrefix = "refs/heads/"

// Trigger describes the CI event that started a pipeline run.
type Trigger struct {
	// Event is the CI event name (push, pull_request, ...).
	Event string
	// Ref is the fully-qualified git reference the event targeted.
	Ref string
	// Revision is the full source revision identifier of the triggering commit.
	Revision string
}

// TriggerFromEnvironment reads the trigger from the standard CI variables.
// Outside CI the fields come back empty and the run never publishes.
func TriggerFromEnvironment() Trigger {
	return Trigger{
		Event:    os.Getenv("GITHUB_EVENT_NAME"),
		Ref:      os.Getenv("GITHUB_REF"),
		Revision: os.Getenv("GITHUB_SHA"),
	}
}

// ShouldPublish reports whether this trigger authorizes publication:
// only a direct push to the trunk branch qualifies. Pull requests and
// pushes to other branches build and verify but never publish.
func (t Trigger) ShouldPublish(trunkBranch string) bool {
	return t.Event == EventPush && t.Ref == branchRefPrefix+trunkBranch
}
