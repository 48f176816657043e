package rules

// DefaultRules is the built-in watch list, used when the config names none.
func DefaultRules() []*Rule {
	return []*Rule{
		{
			Name:         "ramp-obstructed",
			Priority:     100,
			Category:     "passage",
			Exclusive:    true,
			ConditionSrc: `IsRamp() && IsObstructed`,
		},
		{
			Name:         "home-outgunned",
			Priority:     95,
			Category:     "defense",
			Exclusive:    true,
			ConditionSrc: `IsHome() && Outgunned(1.5)`,
		},
		{
			Name:         "enemy-at-home",
			Priority:     90,
			Category:     "defense",
			Exclusive:    true,
			ConditionSrc: `IsHome() && EnemyForce > 0`,
		},
		{
			Name:         "contested-expand",
			Priority:     70,
			Category:     "expansion",
			Exclusive:    false,
			ConditionSrc: `IsExpand() && Contested()`,
		},
		{
			Name:         "unscouted-enemy-expand",
			Priority:     50,
			Category:     "scouting",
			Exclusive:    true,
			ConditionSrc: `IsExpand() && !IsDepleted && Visible == 0 && EnemyValue > 2`,
		},
		{
			Name:         "expand-depleted",
			Priority:     40,
			Category:     "expansion",
			Exclusive:    true,
			ConditionSrc: `IsExpand() && IsDepleted`,
		},
		{
			Name:         "expand-blocked",
			Priority:     30,
			Category:     "expansion",
			Exclusive:    true,
			ConditionSrc: `IsExpand() && IsBlocked`,
		},
	}
}
