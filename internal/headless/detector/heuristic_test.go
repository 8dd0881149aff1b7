package detector

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/awards-crawler/internal/award"
)

func httpPage(body string) award.Page {
	return award.Page{Markup: []byte(body), Strategy: award.StrategyHTTP}
}

func TestHeuristic_Unrendered_EmptyBody(t *testing.T) {
	t.Parallel()

	h := NewHeuristic(100)
	require.True(t, h.Unrendered(httpPage("")))
	require.True(t, h.Unrendered(httpPage("  \n ")))
}

func TestHeuristic_Unrendered_SPAMarkers(t *testing.T) {
	t.Parallel()

	h := NewHeuristic(100)
	require.True(t, h.Unrendered(httpPage(`<div id="__next"></div>`)))
}

func TestHeuristic_Unrendered_ScriptDensity(t *testing.T) {
	t.Parallel()

	h := NewHeuristic(1000)
	require.True(t, h.Unrendered(httpPage(`<html><script>var a=1;</script><p>t</p></html>`)))
	require.True(t, h.Unrendered(httpPage(`<html><p>t</p><script src="x"`)), "unterminated tag")
}

func TestHeuristic_Unrendered_ContentPage(t *testing.T) {
	t.Parallel()

	h := NewHeuristic(0)
	body := "<html><body><h2>Government</h2>" + strings.Repeat("<p>Winner: Service NSW</p>", 100) + "</body></html>"
	require.False(t, h.Unrendered(httpPage(body)))
}

func TestHeuristic_Unrendered_IgnoresHeadlessPages(t *testing.T) {
	t.Parallel()

	h := NewHeuristic(100)
	require.False(t, h.Unrendered(award.Page{Strategy: award.StrategyHeadless}))
}
