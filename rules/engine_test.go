package rules

import (
	"math"
	"slices"
	"testing"
)

func TestDefaultRulesCompile(t *testing.T) {
	engine, err := NewEngine(DefaultRules())
	if err != nil {
		t.Fatalf("NewEngine(DefaultRules()) failed: %v", err)
	}
	if len(engine.rules) != 7 {
		t.Errorf("expected 7 rules, got %d", len(engine.rules))
	}
	// Verify priority ordering (descending).
	for i := 1; i < len(engine.rules); i++ {
		if engine.rules[i].Priority > engine.rules[i-1].Priority {
			t.Errorf("rules not sorted by priority: %s (%d) > %s (%d)",
				engine.rules[i].Name, engine.rules[i].Priority,
				engine.rules[i-1].Name, engine.rules[i-1].Priority)
		}
	}
}

func TestNewEngineRejectsBadCondition(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"syntax", `IsRamp() &&`},
		{"unknown field", `Altitude > 3`},
		{"not bool", `EnemyForce + 1`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEngine([]*Rule{{Name: tt.name, ConditionSrc: tt.src}})
			if err == nil {
				t.Errorf("NewEngine(%q) should fail", tt.src)
			}
		})
	}
}

func ruleNames(alerts []Alert) []string {
	var out []string
	for _, a := range alerts {
		out = append(out, a.Rule)
	}
	return out
}

func TestEvaluateDefaultRules(t *testing.T) {
	engine, err := NewEngine(DefaultRules())
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name string
		env  RegionEnv
		want []string
	}{
		{"quiet open area", RegionEnv{Type: "OpenArea", Visible: 1}, nil},
		{"obstructed ramp", RegionEnv{Type: "Ramp", IsObstructed: true}, []string{"ramp-obstructed"}},
		{"clear ramp", RegionEnv{Type: "Ramp"}, nil},
		{
			"outgunned main suppresses enemy-at-home",
			RegionEnv{Type: "Expand", ExpandType: "Main", SelfForce: 2, EnemyForce: 10, Visible: 1},
			[]string{"home-outgunned", "contested-expand"},
		},
		{
			"enemy in natural",
			RegionEnv{Type: "Expand", ExpandType: "Natural", SelfForce: 10, EnemyForce: 2, Visible: 1},
			[]string{"enemy-at-home", "contested-expand"},
		},
		{
			"depleted and blocked expand reports depleted only",
			RegionEnv{Type: "Expand", ExpandType: "Far", IsDepleted: true, IsBlocked: true, Visible: 1},
			[]string{"expand-depleted"},
		},
		{
			"remembered enemy base out of vision",
			RegionEnv{Type: "Expand", ExpandType: "Fourth", EnemyValue: 12},
			[]string{"unscouted-enemy-expand"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ruleNames(engine.Evaluate([]RegionEnv{tt.env}))
			if !slices.Equal(got, tt.want) {
				t.Errorf("alerts = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluateExclusivityIsPerRegion(t *testing.T) {
	engine, err := NewEngine(DefaultRules())
	if err != nil {
		t.Fatal(err)
	}
	alerts := engine.Evaluate([]RegionEnv{
		{ID: 3, Type: "Ramp", IsObstructed: true},
		{ID: 8, Type: "Ramp", IsObstructed: true},
	})
	if len(alerts) != 2 || alerts[0].RegionID != 3 || alerts[1].RegionID != 8 {
		t.Errorf("alerts = %+v, want one per ramp", alerts)
	}
}

func TestSwap(t *testing.T) {
	engine, err := NewEngine(DefaultRules())
	if err != nil {
		t.Fatal(err)
	}

	bad := []*Rule{{Name: "broken", ConditionSrc: `nope(`}}
	if err := engine.Swap(bad); err == nil {
		t.Fatalf("Swap with a broken rule should fail")
	}
	if len(engine.Rules()) != 7 {
		t.Errorf("failed Swap replaced the rules: %v", engine.Rules())
	}

	err = engine.Swap([]*Rule{
		{Name: "low", Priority: 1, Category: "x", ConditionSrc: `true`},
		{Name: "high", Priority: 9, Category: "x", Exclusive: true, ConditionSrc: `IsRamp()`},
	})
	if err != nil {
		t.Fatalf("Swap: %v", err)
	}
	if got := engine.Rules(); !slices.Equal(got, []string{"high", "low"}) {
		t.Errorf("Rules() = %v, want [high low]", got)
	}
	got := ruleNames(engine.Evaluate([]RegionEnv{{Type: "Ramp"}, {Type: "OpenArea"}}))
	if !slices.Equal(got, []string{"high", "low"}) {
		t.Errorf("alerts = %v, want [high low]", got)
	}
}

func TestEnemyMainIsNotHome(t *testing.T) {
	engine, err := NewEngine(DefaultRules())
	if err != nil {
		t.Fatal(err)
	}
	enemyMain := RegionEnv{ID: 6, Type: "Expand", ExpandType: "Main", EnemySide: true, EnemyForce: 10, Visible: 1}
	if enemyMain.IsHome() || !enemyMain.IsEnemyHome() {
		t.Errorf("enemy main: IsHome = %v IsEnemyHome = %v, want false true", enemyMain.IsHome(), enemyMain.IsEnemyHome())
	}
	for _, a := range engine.Evaluate([]RegionEnv{enemyMain}) {
		if a.Category == "defense" {
			t.Errorf("enemy main raised %s", a.Rule)
		}
	}

	ownMain := enemyMain
	ownMain.EnemySide = false
	got := ruleNames(engine.Evaluate([]RegionEnv{ownMain}))
	if !slices.Contains(got, "home-outgunned") {
		t.Errorf("own main alerts = %v, want home-outgunned", got)
	}
}

func TestRegionEnvHelpers(t *testing.T) {
	env := RegionEnv{Type: "Expand", ExpandType: "natural", SelfForce: 4, EnemyForce: 5, GameLoop: 224}
	if !env.IsHome() || !env.IsExpandType("Natural") {
		t.Errorf("natural expand should be home")
	}
	if env.Outgunned(1.5) {
		t.Errorf("5 vs 4 should not be outgunned at 1.5")
	}
	if !env.Outgunned(1.2) {
		t.Errorf("5 vs 4 should be outgunned at 1.2")
	}
	if got := env.Seconds(); math.Abs(got-10) > 1e-9 {
		t.Errorf("Seconds() = %v, want 10", got)
	}
	if (RegionEnv{}).IsExpandType("") {
		t.Errorf("empty expand type should never match")
	}
}
