package mqtt

import (
	"fmt"
	"strings"
)

// Topic wildcard characters.
const (
	wildcardSingle = "+"
	wildcardMulti  = "#"
	levelSeparator = "/"
)

// ValidateTopicFilter checks a subscription filter.
//
// "#" must be the last level and occupy it alone. "+" must occupy its level
// alone. Empty filters and filters containing NUL are rejected.
func ValidateTopicFilter(filter string) error {
	if filter == "" {
		return fmt.Errorf("%w: topic cannot be empty", ErrInvalidTopic)
	}
	if strings.ContainsRune(filter, 0) {
		return fmt.Errorf("%w: %q contains NUL", ErrInvalidTopic, filter)
	}

	levels := strings.Split(filter, levelSeparator)
	for i, level := range levels {
		if strings.Contains(level, wildcardMulti) {
			if level != wildcardMulti || i != len(levels)-1 {
				return fmt.Errorf("%w: %q: '#' must be the final level on its own", ErrInvalidTopic, filter)
			}
		}
		if strings.Contains(level, wildcardSingle) && level != wildcardSingle {
			return fmt.Errorf("%w: %q: '+' must occupy a whole level", ErrInvalidTopic, filter)
		}
	}

	return nil
}

// ValidateTopicName checks a topic used for publishing. Wildcards are not allowed.
func ValidateTopicName(topic string) error {
	if topic == "" {
		return fmt.Errorf("%w: topic cannot be empty", ErrInvalidTopic)
	}
	if strings.ContainsAny(topic, wildcardSingle+wildcardMulti+"\x00") {
		return fmt.Errorf("%w: %q contains wildcard or NUL", ErrInvalidTopic, topic)
	}
	return nil
}

// MatchTopic reports whether a concrete topic matches a subscription filter.
//
// Wildcards follow MQTT 3.1.1:
//
//	MatchTopic("sensors/+/temp", "sensors/kitchen/temp") // true
//	MatchTopic("sensors/#", "sensors")                   // true
//	MatchTopic("#", "$SYS/uptime")                       // false
func MatchTopic(filter, topic string) bool {
	if filter == topic {
		return true
	}

	// Wildcards at the first level never match $-prefixed topics.
	if strings.HasPrefix(topic, "$") &&
		(strings.HasPrefix(filter, wildcardSingle) || strings.HasPrefix(filter, wildcardMulti)) {
		return false
	}

	fl := strings.Split(filter, levelSeparator)
	tl := strings.Split(topic, levelSeparator)

	for i, level := range fl {
		if level == wildcardMulti {
			return true
		}
		if i >= len(tl) {
			return false
		}
		if level != wildcardSingle && level != tl[i] {
			return false
		}
	}

	return len(fl) == len(tl)
}
