// Package resultviews renders the live progress and final ranked
// responsibility table as a fastview.ViewComponent, for the demo
// dashboard to push over the websocket while an engine runs.
package resultviews

import (
	"fmt"
	"html/template"

	"blame/progress"
	"blame/responsibility"

	"blame/server/fastview"

	channerics "github.com/niceyeti/channerics/channels"
)

// Row is one player's current standing in the ranked table.
type Row struct {
	Name  string
	Value float64
}

// Snapshot is the view-model pushed to RankedTable: the solver's
// progress plus however much of the final ranking is known so far.
type Snapshot struct {
	Progress progress.Snapshot
	Rows     []Row
}

// NewSnapshot sorts results descending by TotalValue and pairs them
// with display names, building the snapshots the dashboard publishes.
func NewSnapshot(p progress.Snapshot, results []*responsibility.Result, names []string) Snapshot {
	rows := make([]Row, len(results))
	for i, r := range results {
		f, _ := r.TotalValue.Float64()
		name := fmt.Sprintf("player-%d", r.GroupIndex)
		if i < len(names) {
			name = names[i]
		}
		rows[i] = Row{Name: name, Value: f}
	}
	for i := 1; i < len(rows); i++ {
		for j := i; j > 0 && rows[j].Value > rows[j-1].Value; j-- {
			rows[j], rows[j-1] = rows[j-1], rows[j]
		}
	}
	return Snapshot{Progress: p, Rows: rows}
}

// RankedTable is a bar-chart-style view of a Snapshot: a progress bar
// for the run itself, and one horizontal bar per rank slot scaled to
// the current maximum responsibility value. Rank slots are fixed at
// construction so updates address rows by id, the way values_grid_view
// addresses cells by (x,y) rather than replacing markup wholesale.
type RankedTable struct {
	id      string
	n       int
	updates <-chan []fastview.EleUpdate
}

// NewRankedTable builds a RankedTable view over a stream of snapshots,
// reserving n rank-ordered row slots.
func NewRankedTable(
	done <-chan struct{},
	snapshots <-chan Snapshot,
	n int,
) fastview.ViewComponent {
	id := "responsibility-table"
	rt := &RankedTable{id: template.HTMLEscapeString(id), n: n}
	rt.updates = channerics.Convert(done, snapshots, rt.toUpdates)
	return rt
}

func (rt *RankedTable) Updates() <-chan []fastview.EleUpdate {
	return rt.updates
}

func (rt *RankedTable) Parse(parent *template.Template) (string, error) {
	return parent.New(rt.id).Funcs(template.FuncMap{"add": func(i, j int) int { return i + j }}).Parse(
		`<div id="` + rt.id + `">
			<div>
				<progress id="run-progress" max="1" value="0"></progress>
				<span id="run-stage"></span>
				<span id="run-samples"></span>
			</div>
			<table>
				{{ range $i := . }}
				<tr>
					<td id="rank-{{ $i }}-name"></td>
					<td><div id="rank-{{ $i }}-bar" style="height:12px;background:steelblue;width:0px"></div></td>
					<td id="rank-{{ $i }}-value"></td>
				</tr>
				{{ end }}
			</table>
		</div>`)
}

// RankSlots returns the template data Parse's row-range directive
// expects: one entry per reserved rank slot.
func (rt *RankedTable) RankSlots() []int {
	slots := make([]int, rt.n)
	for i := range slots {
		slots[i] = i
	}
	return slots
}

const maxBarWidth = 300

func (rt *RankedTable) toUpdates(snap Snapshot) (ops []fastview.EleUpdate) {
	ops = append(ops,
		fastview.EleUpdate{
			EleId: "run-progress",
			Ops:   []fastview.Op{{Key: "value", Value: fmt.Sprintf("%.4f", snap.Progress.Fraction)}},
		},
		fastview.EleUpdate{
			EleId: "run-stage",
			Ops:   []fastview.Op{{Key: "textContent", Value: snap.Progress.Stage}},
		},
		fastview.EleUpdate{
			EleId: "run-samples",
			Ops:   []fastview.Op{{Key: "textContent", Value: fmt.Sprintf("%d samples", snap.Progress.Samples)}},
		},
	)

	max := 0.0
	for _, r := range snap.Rows {
		if r.Value > max {
			max = r.Value
		}
	}

	for i, r := range snap.Rows {
		if i >= rt.n {
			break
		}
		width := 0
		if max > 0 {
			width = int(r.Value / max * maxBarWidth)
		}
		ops = append(ops,
			fastview.EleUpdate{
				EleId: fmt.Sprintf("rank-%d-name", i),
				Ops:   []fastview.Op{{Key: "textContent", Value: r.Name}},
			},
			fastview.EleUpdate{
				EleId: fmt.Sprintf("rank-%d-bar", i),
				Ops:   []fastview.Op{{Key: "style", Value: fmt.Sprintf("height:12px;background:steelblue;width:%dpx", width)}},
			},
			fastview.EleUpdate{
				EleId: fmt.Sprintf("rank-%d-value", i),
				Ops:   []fastview.Op{{Key: "textContent", Value: fmt.Sprintf("%.6f", r.Value)}},
			},
		)
	}
	return
}
