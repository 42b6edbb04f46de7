package domain

import "testing"

func rosterOf(names ...string) *Match {
	m := NewMatch(10)
	for _, n := range names {
		m.Players = append(m.Players, NewPlayer(n))
	}
	return m
}

func TestBestSurvivor(t *testing.T) {
	tests := []struct {
		name  string
		rates []float64
		dead  []int
		want  int
	}{
		{name: "highest wins", rates: []float64{50, 80, 66.7}, want: 1},
		{name: "tie goes to roster order", rates: []float64{80, 80, 10}, want: 0},
		{name: "dead players skipped", rates: []float64{90, 80, 70}, dead: []int{0}, want: 1},
		{name: "nobody alive", rates: []float64{1, 2}, dead: []int{0, 1}, want: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			match := NewMatch(10)
			for i, r := range tt.rates {
				p := NewPlayer(string(rune('a' + i)))
				p.SurvivalRate = r
				match.Players = append(match.Players, p)
			}
			for _, i := range tt.dead {
				match.Players[i].Eliminate()
			}
			if got := match.BestSurvivor(); got != tt.want {
				t.Fatalf("BestSurvivor() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestLastAliveAndCounts(t *testing.T) {
	m := rosterOf("a", "b", "c")
	if m.AliveCount() != 3 || m.LastAlive() != -1 {
		t.Fatalf("fresh roster: alive=%d last=%d", m.AliveCount(), m.LastAlive())
	}
	m.Players[0].Eliminate()
	m.Players[2].Eliminate()
	if m.AliveCount() != 1 || m.LastAlive() != 1 {
		t.Fatalf("after eliminations: alive=%d last=%d", m.AliveCount(), m.LastAlive())
	}
	if m.IndexOf("c") != 2 || m.IndexOf("zed") != -1 {
		t.Fatalf("IndexOf mismatch")
	}
}

func TestAnyCanAttempt(t *testing.T) {
	m := rosterOf("a", "b")
	m.Players[0].AttemptsThisRound = AttemptsPerRound
	if !m.AnyCanAttempt() {
		t.Fatalf("b still has attempts")
	}
	m.Players[1].AttemptsThisRound = AttemptsPerRound
	if m.AnyCanAttempt() {
		t.Fatalf("everyone is exhausted")
	}
}
