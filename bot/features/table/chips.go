package table

import (
	"fmt"
	"regexp"
	"strings"

	"cashgame/domain/money"
)

var chipEntryPattern = regexp.MustCompile(`<@!?(\d+)>\s*=\s*([^\s,]+)`)

// ParseChipCounts reads "@player=amount" pairs from a close command.
// Keys are Discord user IDs. Anything between entries other than spaces
// and commas is rejected so a typo never silently drops a player.
func ParseChipCounts(input string) (map[string]money.Amount, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return map[string]money.Amount{}, nil
	}

	matches := chipEntryPattern.FindAllStringSubmatchIndex(input, -1)
	if len(matches) == 0 {
		return nil, fmt.Errorf("expected entries like @player=120.50")
	}

	chips := make(map[string]money.Amount, len(matches))
	last := 0
	for _, m := range matches {
		if gap := input[last:m[0]]; strings.Trim(gap, " \t\n,") != "" {
			return nil, fmt.Errorf("unexpected text %q", strings.TrimSpace(gap))
		}
		last = m[1]

		discordID := input[m[2]:m[3]]
		raw := input[m[4]:m[5]]

		if _, dup := chips[discordID]; dup {
			return nil, fmt.Errorf("<@%s> is listed more than once", discordID)
		}
		amount, err := money.ParseNonNegative(raw)
		if err != nil {
			return nil, fmt.Errorf("chips for <@%s>: %w", discordID, err)
		}
		chips[discordID] = amount
	}
	if tail := input[last:]; strings.Trim(tail, " \t\n,") != "" {
		return nil, fmt.Errorf("unexpected text %q", strings.TrimSpace(tail))
	}

	return chips, nil
}
