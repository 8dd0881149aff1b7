package emit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/JakeFAU/awards-crawler/internal/award"
	"github.com/JakeFAU/awards-crawler/internal/storage/memory"
)

type fixedClock time.Time

func (c fixedClock) Now() time.Time { return time.Time(c) }

var runDate = fixedClock(time.Date(2024, 11, 3, 9, 30, 0, 0, time.UTC))

func sampleRecords() []award.Record {
	return []award.Record{
		{
			Year: 2024, Company: "Koala", Agency: "Humaan", Category: "E-Commerce", Project: "Koala & Co", Rank: 1,
			URL: "https://koala.com", Description: "Flat-pack sofas sold online.", ImageURL: "https://img/koala.png",
			Technologies:       []string{"Shopify", "React"},
			JudgeComments:      "Effortless checkout.",
			InnovativeFeatures: []string{"AR preview"},
			DesignHighlights:   "Warm palette.",
			SocialMedia:        &award.SocialLinks{Twitter: "https://twitter.com/koala", Instagram: "https://instagram.com/koala"},
			AIAnalysis:         "Removes friction.",
		},
		{Year: 2024, Company: "Sod", Category: "E-Commerce", Project: "Sod Store", Rank: 2},
		{Year: 2023, Company: "City of Perth", Agency: "Equilibrium", Category: "Government", Project: "City of Perth", Rank: 1},
	}
}

func render(t *testing.T, records []award.Record, categories []string) Artifacts {
	t.Helper()
	out, err := New(runDate, nil).Render(records, categories)
	require.NoError(t, err)
	return out
}

func file(t *testing.T, a Artifacts, path string) string {
	t.Helper()
	f, ok := a.Get(path)
	require.True(t, ok, "missing %s", path)
	return string(f.Data)
}

func TestRenderProducesAllArtifacts(t *testing.T) {
	t.Parallel()

	a := render(t, sampleRecords(), nil)
	var paths []string
	for _, f := range a.Files {
		paths = append(paths, f.Path)
		assert.NotEmpty(t, f.ContentType)
	}
	assert.Equal(t, []string{PathWinnersTS, PathWinnersJSON, PathSchema, PathBlog, PathCategoriesTS}, paths)
}

func TestWinnersTS(t *testing.T) {
	t.Parallel()

	ts := file(t, render(t, sampleRecords(), nil), PathWinnersTS)
	assert.True(t, strings.HasPrefix(ts, "export interface AwardWinner {"))
	idx := strings.Index(ts, "export const awardWinners: AwardWinner[] = ")
	require.Positive(t, idx)

	body := ts[idx+len("export const awardWinners: AwardWinner[] = "):]
	var got []award.Record
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	assert.Equal(t, sampleRecords(), got)
	assert.Contains(t, body, `"project": "Koala & Co"`, "ampersands stay literal")
	assert.Contains(t, body, `"agency": ""`, "agency is always present")
	assert.True(t, strings.HasSuffix(ts, "]\n"))
}

func TestWinnersJSONMatchesDataset(t *testing.T) {
	t.Parallel()

	a := render(t, sampleRecords(), nil)
	var got []award.Record
	require.NoError(t, json.Unmarshal([]byte(file(t, a, PathWinnersJSON)), &got))
	assert.Equal(t, sampleRecords(), got)

	empty := render(t, nil, nil)
	assert.Equal(t, "[]\n", file(t, empty, PathWinnersJSON))
}

func TestSchemaDocument(t *testing.T) {
	t.Parallel()

	records := sampleRecords()
	raw := file(t, render(t, records, nil), PathSchema)
	var doc struct {
		Context  string `json:"@context"`
		Type     string `json:"@type"`
		Elements []struct {
			Type     string `json:"@type"`
			Position int    `json:"position"`
			Item     struct {
				Type        string `json:"@type"`
				Name        string `json:"name"`
				Description string `json:"description"`
				DateAwarded string `json:"dateAwarded"`
				Recipient   struct {
					Name string `json:"name"`
				} `json:"recipient"`
			} `json:"item"`
		} `json:"itemListElement"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	assert.Equal(t, "https://schema.org", doc.Context)
	assert.Equal(t, "ItemList", doc.Type)
	require.Len(t, doc.Elements, len(records))
	for i, el := range doc.Elements {
		assert.Equal(t, i+1, el.Position)
		assert.Equal(t, "ListItem", el.Type)
		assert.Equal(t, "Award", el.Item.Type)
		assert.Equal(t, records[i].Company, el.Item.Recipient.Name)
	}
	assert.Equal(t, "E-Commerce Award", doc.Elements[0].Item.Name)
	assert.Equal(t, "2024", doc.Elements[0].Item.DateAwarded)
	assert.Equal(t, "Sod Store by ", doc.Elements[1].Item.Description)
}

func TestBlogFrontMatter(t *testing.T) {
	t.Parallel()

	blog := file(t, render(t, sampleRecords(), nil), PathBlog)
	require.True(t, strings.HasPrefix(blog, "---\n"))
	end := strings.Index(blog[4:], "---\n")
	require.Positive(t, end)

	var fm frontMatter
	require.NoError(t, yaml.Unmarshal([]byte(blog[4:4+end]), &fm))
	assert.Equal(t, "Australian Web Awards Winners", fm.Title)
	assert.Equal(t, "2024-11-03", fm.Date)
	assert.Equal(t, []string{"awards", "web-design", "australia"}, fm.Tags)
	assert.False(t, fm.Draft)
	assert.Equal(t, []string{"https://img/koala.png"}, fm.Images)

	noImage := file(t, render(t, sampleRecords()[1:], nil), PathBlog)
	assert.Contains(t, noImage, "images: []")
}

func TestBlogBody(t *testing.T) {
	t.Parallel()

	blog := file(t, render(t, sampleRecords(), nil), PathBlog)

	assert.Less(t, strings.Index(blog, "## 2024 Awards"), strings.Index(blog, "## 2023 Awards"))
	assert.Contains(t, blog, "### E-Commerce\n\n#### 🏆 Winner: Koala & Co\n\n![Koala & Co](https://img/koala.png)\n\n**Agency:** Humaan\n\n")
	assert.Contains(t, blog, "[Visit Website](https://koala.com)")
	assert.Contains(t, blog, "**Technologies Used:** Shopify, React")
	assert.Contains(t, blog, "> **Judges Say:** Effortless checkout.")
	assert.Contains(t, blog, "**Innovative Features:**\n\n- AR preview\n\n")
	assert.Contains(t, blog, "**Design Highlights:** Warm palette.")
	assert.Contains(t, blog, "**Social Media:** [Twitter](https://twitter.com/koala) | [Instagram](https://instagram.com/koala)")
	assert.Contains(t, blog, "**Why This Won:** Removes friction.")
	assert.Contains(t, blog, "#### 🥈 Silver: Sod Store\n\n**Agency:** Not specified\n\n---\n\n")
	assert.Equal(t, 1, strings.Count(blog, "**Social Media:**"), "records without links get no social line")
}

func TestBlogTableAlignsByDisplayWidth(t *testing.T) {
	t.Parallel()

	blog := file(t, render(t, sampleRecords(), nil), PathBlog)
	start := strings.Index(blog, "## 2024 Awards\n\n") + len("## 2024 Awards\n\n")
	var table []string
	for _, line := range strings.Split(blog[start:], "\n") {
		if !strings.HasPrefix(line, "|") {
			break
		}
		table = append(table, line)
	}
	require.Len(t, table, 4, "header, separator and two rows")
	width := runewidth.StringWidth(table[0])
	for _, line := range table[1:] {
		assert.Equal(t, width, runewidth.StringWidth(line), line)
	}
	assert.Contains(t, table[2], "🏆 Winner")
}

func TestWriteTableEscapesPipes(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	writeTable(&b, [][]string{{"A", "B"}, {"x|y", "z"}})
	assert.Contains(t, b.String(), `x\|y`)
}

func TestCategoriesTS(t *testing.T) {
	t.Parallel()

	ts := file(t, render(t, nil, []string{"Government", "", "Agency", "Government", " Education "}), PathCategoriesTS)
	assert.Equal(t, "// Categories from the Australian Web Awards\nexport const awardCategories = [\n  \"Agency\",\n  \"Education\",\n  \"Government\"\n];\n", ts)

	empty := file(t, render(t, nil, nil), PathCategoriesTS)
	assert.Equal(t, "// Categories from the Australian Web Awards\nexport const awardCategories = [];\n", empty)
}

type failingStore struct {
	failOn string
	puts   []string
}

func (s *failingStore) PutObject(_ context.Context, path, _ string, _ io.Reader) (string, error) {
	if path == s.failOn {
		return "", errors.New("bucket not found")
	}
	s.puts = append(s.puts, path)
	return "mem://" + path, nil
}

func TestWrite(t *testing.T) {
	t.Parallel()

	a := render(t, sampleRecords(), []string{"Agency"})
	store := memory.NewBlobStore()
	uris, err := New(runDate, nil).Write(context.Background(), store, a)
	require.NoError(t, err)
	assert.Len(t, uris, len(a.Files))

	for _, f := range a.Files {
		got, err := store.GetObject(context.Background(), f.Path)
		require.NoError(t, err)
		assert.True(t, bytes.Equal(f.Data, got), f.Path)
		assert.Equal(t, f.ContentType, store.ContentType(f.Path))
	}
}

func TestWriteStagingFailureLeavesLivePathsAlone(t *testing.T) {
	t.Parallel()

	store := &failingStore{failOn: StagingPrefix + PathSchema}
	_, err := New(runDate, nil).Write(context.Background(), store, render(t, sampleRecords(), nil))
	require.ErrorContains(t, err, PathSchema)
	assert.Equal(t, []string{StagingPrefix + PathWinnersTS, StagingPrefix + PathWinnersJSON}, store.puts)
}

// flakyStore is a readable store whose writes to one live path fail.
type flakyStore struct {
	*memory.BlobStore
	failOn string
}

func (s *flakyStore) PutObject(ctx context.Context, path, contentType string, data io.Reader) (string, error) {
	if path == s.failOn {
		return "", errors.New("quota exceeded")
	}
	return s.BlobStore.PutObject(ctx, path, contentType, data)
}

func TestWritePromotionFailureRestoresPreviousSet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := &flakyStore{BlobStore: memory.NewBlobStore(), failOn: PathSchema}
	for _, path := range []string{PathWinnersTS, PathWinnersJSON, PathSchema} {
		_, err := store.BlobStore.PutObject(ctx, path, "text/plain", strings.NewReader("old "+path))
		require.NoError(t, err)
	}

	a := render(t, sampleRecords(), nil)
	uris, err := New(runDate, nil).Write(ctx, store, a)
	require.ErrorContains(t, err, PathSchema)
	assert.Len(t, uris, 2)

	for _, path := range []string{PathWinnersTS, PathWinnersJSON, PathSchema} {
		got, err := store.GetObject(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, "old "+path, string(got), path)
	}
	staged, err := store.GetObject(ctx, StagingPrefix+PathSchema)
	require.NoError(t, err)
	f, _ := a.Get(PathSchema)
	assert.Equal(t, f.Data, staged)
}

func TestRenderCategoriesOnly(t *testing.T) {
	t.Parallel()

	a, err := New(runDate, nil).RenderCategories([]string{"Government", "Agency"})
	require.NoError(t, err)
	require.Len(t, a.Files, 1)
	assert.Equal(t, PathCategoriesTS, a.Files[0].Path)
	assert.Contains(t, string(a.Files[0].Data), "\"Agency\",\n  \"Government\"")
}
