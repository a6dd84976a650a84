package main

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/oisheenandy0505/urban-mobility/pkg/geo"
	"github.com/oisheenandy0505/urban-mobility/pkg/style"
	"github.com/oisheenandy0505/urban-mobility/pkg/view"
)

// Styles
var (
	styleDefault  = tcell.StyleDefault
	styleLabel    = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleValue    = tcell.StyleDefault.Foreground(tcell.ColorTeal)
	styleFocus    = tcell.StyleDefault.Background(tcell.ColorBlue).Foreground(tcell.ColorWhite)
	styleHeading  = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleBorder   = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleStatus   = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorNavy)
	styleMsgInfo  = tcell.StyleDefault.Foreground(tcell.ColorSilver).Background(tcell.ColorNavy)
	styleMsgError = tcell.StyleDefault.Foreground(tcell.ColorRed).Background(tcell.ColorNavy).Bold(true)
	styleMsgOk    = tcell.StyleDefault.Foreground(tcell.ColorGreen).Background(tcell.ColorNavy)
	styleHelp     = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleMenuSel  = tcell.StyleDefault.Background(tcell.ColorBlue).Foreground(tcell.ColorWhite)
)

// Terminal palette for style tokens. Kept in sync with the PNG palette
// in pkg/mapimg by the shared token names.
var tokenStyles = map[style.Token]tcell.Style{
	style.TokenRoad:        tcell.StyleDefault.Foreground(tcell.NewRGBColor(140, 140, 140)),
	style.TokenBridge:      tcell.StyleDefault.Foreground(tcell.NewRGBColor(70, 130, 180)),
	style.TokenTunnel:      tcell.StyleDefault.Foreground(tcell.NewRGBColor(112, 128, 144)),
	style.TokenBridgeAlert: tcell.StyleDefault.Foreground(tcell.NewRGBColor(198, 40, 40)).Bold(true),
	style.TokenTunnelAlert: tcell.StyleDefault.Foreground(tcell.NewRGBColor(123, 31, 162)).Bold(true),
	style.TokenFlood:       tcell.StyleDefault.Foreground(tcell.NewRGBColor(239, 108, 0)),
	style.TokenTargeted:    tcell.StyleDefault.Foreground(tcell.NewRGBColor(211, 47, 47)),
	style.TokenRandom:      tcell.StyleDefault.Foreground(tcell.NewRGBColor(33, 33, 33)),
}

const sidebarWidth = 38

func (app *App) draw() {
	app.screen.Clear()
	w, h := app.screen.Size()

	model := view.Compose(app.tracker.Snapshot(), app.catalog)

	app.drawSidebar(model, h)
	app.drawPanes(model, sidebarWidth, 0, w-sidebarWidth, h-2)

	switch app.mode {
	case ModeCityPick:
		app.drawCityPicker(w, h)
	case ModeHelp:
		app.drawHelpOverlay(w, h)
	}

	app.drawStatusBar(model, w, h)
}

func (app *App) drawSidebar(model view.Model, h int) {
	for y := 0; y < h-2; y++ {
		app.screen.SetContent(sidebarWidth-1, y, '│', nil, styleBorder)
	}

	x, y := 1, 0
	app.drawString(x, y, "shockview", styleHeading)
	y += 2

	y = app.drawForm(model, x, y)
	y++

	if model.Metrics != nil {
		y = app.drawMetrics(model.Metrics, x, y)
		y++
	}
	if len(model.Legend) > 0 && y < h-4 {
		app.drawLegend(model.Legend, x, y)
	}
}

func (app *App) drawForm(model view.Model, x, y int) int {
	scenario := "(loading...)"
	if app.catalogLoaded {
		if len(app.catalog) > 0 {
			scenario = app.catalog[app.scenarioIdx]
		} else {
			scenario = "(none available)"
		}
	}
	flood := "no"
	if app.useFlood {
		flood = "yes"
	}

	rows := []struct {
		field int
		label string
		value string
	}{
		{fieldCity, "City", app.city},
		{fieldScenario, "Scenario", scenario},
		{fieldSeverity, "Severity", fmt.Sprintf("%.2f", app.severity)},
		{fieldPairs, "OD pairs", fmt.Sprintf("%d", app.nPairs)},
		{fieldFlood, "USGS flood data", flood},
	}

	for _, row := range rows {
		app.drawString(x, y, row.label+":", styleLabel)
		valStyle := styleValue
		if app.focus == row.field && app.mode == ModeForm {
			valStyle = styleFocus
		}
		value := row.value
		if row.field == fieldCity && app.focus == fieldCity && app.mode == ModeForm {
			value += "_"
		}
		app.drawString(x+17, y, truncate(value, sidebarWidth-19), valStyle)
		y++
	}
	y++

	submitLabel := "[ Run simulation ]"
	submitStyle := styleLabel
	if !model.SubmitEnabled {
		submitLabel = "[ Running... ]"
		submitStyle = styleHelp
	}
	if app.focus == fieldSubmit && app.mode == ModeForm {
		submitStyle = styleFocus
	}
	app.drawString(x, y, submitLabel, submitStyle)
	y++

	if app.catalogFailure != "" {
		app.drawString(x, y, truncate(app.catalogFailure, sidebarWidth-3), styleMsgError.Background(tcell.ColorReset))
		y++
	}
	return y
}

func (app *App) drawMetrics(m *view.Metrics, x, y int) int {
	app.drawString(x, y, "Impact", styleHeading)
	y++
	rows := [][2]string{
		{"Avg travel ratio", m.AvgRatio},
		{"Median ratio", m.MedianRatio},
		{"Disconnected", m.PctDisconnected},
		{"Removed edges", m.RemovedEdges},
		{"OD pairs", m.ODPairs},
	}
	for _, row := range rows {
		app.drawString(x, y, fmt.Sprintf("  %-17s %s", row[0], row[1]), styleLabel)
		y++
	}
	return y
}

func (app *App) drawLegend(entries []view.LegendEntry, x, y int) int {
	app.drawString(x, y, "Legend", styleHeading)
	y++
	for _, e := range entries {
		mark := "──"
		if e.Desc.Dashed {
			mark = "╌╌"
		}
		app.drawString(x+2, y, mark, tokenStyle(e.Desc.Token))
		app.drawString(x+5, y, e.Label, styleLabel)
		y++
	}
	return y
}

// drawPanes lays the before/after panes side by side in the given area.
func (app *App) drawPanes(model view.Model, x, y, w, h int) {
	if len(model.Panes) == 0 {
		msg := "Run a simulation to see the network"
		if !app.catalogLoaded {
			msg = "Contacting simulation service..."
		}
		app.drawString(x+(w-len(msg))/2, y+h/2, msg, styleHelp)
		return
	}

	paneW := w / len(model.Panes)
	for i, pane := range model.Panes {
		app.drawPane(pane, model.Scenario, x+i*paneW, y, paneW-1, h)
	}
}

func (app *App) drawPane(pane view.Pane, scenario string, x, y, w, h int) {
	app.drawTitledBox(x, y, w, h, truncate(pane.Title, w-4))

	vp := geo.FitViewport(pane.Bounds, w-2, h-2, 1)
	if vp == nil {
		msg := "(no geometry)"
		app.drawString(x+(w-len(msg))/2, y+h/2, msg, styleHelp)
		return
	}

	for _, layer := range pane.Layers {
		if layer.Collection == nil {
			continue
		}
		for _, feat := range layer.Collection.Features {
			var desc style.Descriptor
			if layer.Removed {
				desc = style.Removed(feat.Properties, scenario)
			} else {
				desc = style.Baseline(feat.Properties)
			}
			app.drawFeature(vp, feat, desc, x+1, y+1)
		}
	}
}

func (app *App) drawFeature(vp *geo.Viewport, feat *geojson.Feature, desc style.Descriptor, offX, offY int) {
	switch g := feat.Geometry.(type) {
	case orb.LineString:
		app.drawGeoLine(vp, g, desc, offX, offY)
	case orb.MultiLineString:
		for _, line := range g {
			app.drawGeoLine(vp, line, desc, offX, offY)
		}
	}
}

func (app *App) drawGeoLine(vp *geo.Viewport, line orb.LineString, desc style.Descriptor, offX, offY int) {
	st := tokenStyle(desc.Token)
	mark := edgeRune(desc.Weight)

	for i := 1; i < len(line); i++ {
		x1, y1 := vp.Project(line[i-1][1], line[i-1][0])
		x2, y2 := vp.Project(line[i][1], line[i][0])
		for j, p := range linePoints(x1, y1, x2, y2) {
			if desc.Dashed && j%2 == 1 {
				continue
			}
			app.screen.SetContent(offX+p[0], offY+p[1], mark, nil, st)
		}
	}
}

// edgeRune picks a cell glyph for a stroke weight: terminal cells have
// no real line width, so heavier strokes get denser block glyphs.
func edgeRune(weight float64) rune {
	switch {
	case weight >= style.WeightHeavy:
		return '█'
	case weight >= style.WeightOverlay:
		return '▓'
	case weight >= style.WeightNormal:
		return '▒'
	default:
		return '·'
	}
}

// linePoints returns the cells of a straight segment, endpoints
// included (Bresenham).
func linePoints(x1, y1, x2, y2 int) [][2]int {
	dx := abs(x2 - x1)
	dy := -abs(y2 - y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}
	err := dx + dy

	var points [][2]int
	x, y := x1, y1
	for {
		points = append(points, [2]int{x, y})
		if x == x2 && y == y2 {
			return points
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func tokenStyle(t style.Token) tcell.Style {
	if st, ok := tokenStyles[t]; ok {
		return st
	}
	return tokenStyles[style.TokenRoad]
}

func (app *App) drawCityPicker(w, h int) {
	boxW := 50
	if boxW > w-4 {
		boxW = w - 4
	}
	boxH := len(app.cities) + 4
	if boxH > h-4 {
		boxH = h - 4
	}
	boxX := (w - boxW) / 2
	boxY := (h - boxH) / 2

	app.drawTitledBox(boxX, boxY, boxW, boxH, "Select City")
	for i, c := range app.cities {
		if i >= boxH-4 {
			break
		}
		st := styleLabel
		if i == app.cityPickIdx {
			st = styleMenuSel
		}
		line := fmt.Sprintf(" %-*s", boxW-4, truncate(c, boxW-4))
		app.drawString(boxX+1, boxY+2+i, line, st)
	}
}

func (app *App) drawHelpOverlay(w, h int) {
	lines := []string{
		"Tab / ↑↓      move between fields",
		"← →           adjust the focused field",
		"Enter         pick city / toggle / run",
		"Ctrl+R        run simulation",
		"Ctrl+L        open city picker",
		"Ctrl+E        export before/after PNGs",
		"F1            this help",
		"Esc, Ctrl+C   quit",
	}
	boxW := 48
	boxH := len(lines) + 4
	boxX := (w - boxW) / 2
	boxY := (h - boxH) / 2

	app.drawTitledBox(boxX, boxY, boxW, boxH, "Help")
	for i, line := range lines {
		app.drawString(boxX+2, boxY+2+i, line, styleLabel)
	}
}

func (app *App) drawStatusBar(model view.Model, w, h int) {
	y := h - 1
	for x := 0; x < w; x++ {
		app.screen.SetContent(x, y, ' ', nil, styleStatus)
	}

	app.drawString(1, y, truncate(model.Status, w/2), styleStatus)

	if app.message != "" {
		st := styleMsgInfo
		switch app.messageType {
		case MsgError:
			st = styleMsgError
		case MsgSuccess:
			st = styleMsgOk
		}
		// Flash: bold briefly after the message appears
		if time.Now().UnixMilli()-app.flashStart.Load() < 700 {
			st = st.Bold(true)
		}
		app.drawString(w-len(app.message)-2, y, truncate(app.message, w/2), st)
	}

	y = h - 2
	for x := 0; x < w; x++ {
		app.screen.SetContent(x, y, ' ', nil, styleDefault)
	}
	app.drawString(1, y, app.helpString(), styleHelp)
}

func (app *App) helpString() string {
	switch app.mode {
	case ModeCityPick:
		return "↑↓:Select  Enter:Confirm  Esc:Cancel"
	case ModeHelp:
		return "Esc:Close"
	default:
		return "Tab:Fields  ←→:Adjust  Ctrl+R:Run  Ctrl+E:Export  F1:Help  Esc:Quit"
	}
}

// drawTitledBox draws a bordered box with optional title
func (app *App) drawTitledBox(x, y, w, h int, title string) {
	app.screen.SetContent(x, y, '┌', nil, styleBorder)
	for i := 1; i < w-1; i++ {
		app.screen.SetContent(x+i, y, '─', nil, styleBorder)
	}
	app.screen.SetContent(x+w-1, y, '┐', nil, styleBorder)

	if title != "" {
		titleX := x + (w-len(title)-2)/2
		app.screen.SetContent(titleX, y, ' ', nil, styleBorder)
		app.drawString(titleX+1, y, title, styleHeading)
		app.screen.SetContent(titleX+1+len(title), y, ' ', nil, styleBorder)
	}

	for row := 1; row < h-1; row++ {
		app.screen.SetContent(x, y+row, '│', nil, styleBorder)
		for col := 1; col < w-1; col++ {
			app.screen.SetContent(x+col, y+row, ' ', nil, styleDefault)
		}
		app.screen.SetContent(x+w-1, y+row, '│', nil, styleBorder)
	}

	app.screen.SetContent(x, y+h-1, '└', nil, styleBorder)
	for i := 1; i < w-1; i++ {
		app.screen.SetContent(x+i, y+h-1, '─', nil, styleBorder)
	}
	app.screen.SetContent(x+w-1, y+h-1, '┘', nil, styleBorder)
}

func (app *App) drawString(x, y int, s string, st tcell.Style) {
	for i, r := range s {
		app.screen.SetContent(x+i, y, r, nil, st)
	}
}

func truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
