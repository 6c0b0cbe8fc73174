package index

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/sagan/aimeta/features/extract"
	"github.com/sagan/aimeta/features/testimg"
)

func writeFixtures(t *testing.T) string {
	dir := t.TempDir()
	a1111 := testimg.PNG(testimg.Image(4, 4),
		testimg.Text("parameters", "a cat\nNegative prompt: blurry\nSteps: 20, CFG scale: 7, Model: sd15"))
	plain := testimg.PNG(testimg.Image(2, 2))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub", ".cache"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.png"), a1111, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "b.png"), plain, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", ".cache", "c.png"), plain, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "d.png.part"), plain, 0644))
	return dir
}

func TestDoIndex(t *testing.T) {
	dir := writeFixtures(t)
	rows, err := doIndex(context.Background(), dir, IndexOptions{Jobs: 2, Extract: extract.Options{}})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "a.png", rows[0].Path)
	assert.Equal(t, "", rows[0].DirPath)
	assert.Equal(t, "A1111", rows[0].Format)
	assert.Equal(t, "a cat", rows[0].Positive)
	assert.Equal(t, "blurry", rows[0].Negative)
	assert.Equal(t, "Steps: 20, CFG scale: 7", rows[0].Parameters)
	assert.Equal(t, "Model: sd15", rows[0].Models)
	assert.Equal(t, 4, rows[0].Width)
	assert.NotEmpty(t, rows[0].Mdate)

	assert.Equal(t, "sub/b.png", rows[1].Path)
	assert.Equal(t, "sub", rows[1].DirPath)
	assert.NotEmpty(t, rows[1].Warning)

	rows, err = doIndex(context.Background(), dir, IndexOptions{NoRecursive: true})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestColumns(t *testing.T) {
	columns, err := Columns(nil, "")
	require.NoError(t, err)
	header, _ := RowList(nil).Table(columns)
	assert.Equal(t, "path", header[0])
	assert.NotContains(t, header, "thumbnail")

	columns, err = Columns([]string{"path", "param.CFG scale", "model.Model"}, "img")
	require.NoError(t, err)
	header, _ = RowList(nil).Table(columns)
	assert.Equal(t, []string{"img_path", "img_param_CFG_scale", "img_model_Model"}, header)

	_, err = Columns([]string{"nope"}, "")
	assert.Error(t, err)
	_, err = Columns([]string{"path", "path"}, "")
	assert.Error(t, err)
	_, err = Columns([]string{"param."}, "")
	assert.Error(t, err)
}

func TestSave(t *testing.T) {
	dir := writeFixtures(t)
	rows, err := doIndex(context.Background(), dir, IndexOptions{})
	require.NoError(t, err)
	columns, err := Columns([]string{"path", "param.Steps", "model.Model", "positive_prompt"}, "")
	require.NoError(t, err)
	header, records := rows.Table(columns)

	buf := &bytes.Buffer{}
	require.NoError(t, SaveCsv(buf, header, records))
	table, err := csv.NewReader(buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"path", "param_Steps", "model_Model", "positive_prompt"},
		{"a.png", "20", "sd15", "a cat"},
		{"sub/b.png", "", "", ""},
	}, table)

	buf.Reset()
	require.NoError(t, SaveXlsx(buf, header, records))
	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()
	xlsxRows, err := f.GetRows(xlsxSheet)
	require.NoError(t, err)
	assert.Equal(t, table[:2], xlsxRows[:2])
}
