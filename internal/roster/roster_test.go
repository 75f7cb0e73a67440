package roster_test

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"exam-allocator/internal/models"
	"exam-allocator/internal/roster"
	"github.com/Flaque/filet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestReadStudents_CSV(t *testing.T) {
	input := "Student Name,Pincode,Grade\nAsha,560001,A\n\nRavi, 560034 ,B\n"

	got, err := roster.ReadStudents(strings.NewReader(input), roster.FormatCSV)

	require.NoError(t, err)
	assert.Equal(t, []models.Student{
		{Name: "Asha", PostalCode: 560001},
		{Name: "Ravi", PostalCode: 560034},
	}, got.Students)
	assert.Empty(t, got.Rejected)
}

func TestReadStudents_RejectsBadPincodePerRow(t *testing.T) {
	input := "Student Name,Pincode\nAsha,560001\nRavi,56OO34\nMeera,\nJoe,560002.0\nAnn,1.5\n"

	got, err := roster.ReadStudents(strings.NewReader(input), roster.FormatCSV)

	require.NoError(t, err)
	assert.Equal(t, []models.Student{
		{Name: "Asha", PostalCode: 560001},
		{Name: "Joe", PostalCode: 560002},
	}, got.Students)
	require.Len(t, got.Rejected, 3)

	first := got.Rejected[0]
	require.ErrorIs(t, first, roster.ErrFormat)
	assert.Equal(t, roster.KindStudents, first.Kind)
	assert.Equal(t, 3, first.Row)
	assert.Equal(t, "Pincode", first.Column)
	assert.Equal(t, "56OO34", first.Value)
	assert.Contains(t, first.Error(), `students row 3: Pincode "56OO34"`)
	assert.Equal(t, 4, got.Rejected[1].Row)
	assert.Equal(t, 6, got.Rejected[2].Row)
}

func TestReadStudents_MissingColumns(t *testing.T) {
	input := "Name,Pincode\nAsha,560001\n"

	got, err := roster.ReadStudents(strings.NewReader(input), roster.FormatCSV)

	require.ErrorIs(t, err, roster.ErrFileFormat)
	assert.Nil(t, got)
	assert.Contains(t, err.Error(), `missing "Student Name"`)
}

func TestReadCenters_CSV(t *testing.T) {
	t.Run("columns in any order with BOM", func(t *testing.T) {
		input := "\ufeffPincode,Exam Center Name\n560010,C1\n560002,C2\n"

		got, err := roster.ReadCenters(strings.NewReader(input), roster.FormatCSV)

		require.NoError(t, err)
		assert.Equal(t, []models.Center{
			{Name: "C1", PostalCode: 560010},
			{Name: "C2", PostalCode: 560002},
		}, got.Centers)
	})

	t.Run("missing both columns", func(t *testing.T) {
		input := "Center,Zip\nC1,560010\n"

		_, err := roster.ReadCenters(strings.NewReader(input), roster.FormatCSV)

		require.ErrorIs(t, err, roster.ErrFileFormat)
		assert.Contains(t, err.Error(), `centers file must contain "Exam Center Name" and "Pincode" columns`)
		assert.Contains(t, err.Error(), `missing "Exam Center Name", "Pincode"`)
	})

	t.Run("empty file", func(t *testing.T) {
		_, err := roster.ReadCenters(strings.NewReader(""), roster.FormatCSV)

		require.ErrorIs(t, err, roster.ErrFileFormat)
		assert.Contains(t, err.Error(), "centers file is empty")
	})

	t.Run("header only", func(t *testing.T) {
		got, err := roster.ReadCenters(strings.NewReader("Exam Center Name,Pincode\n"), roster.FormatCSV)

		require.NoError(t, err)
		assert.Empty(t, got.Centers)
	})
}

func TestReadCenters_XLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"Exam Center Name", "Pincode"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"C1", 560010}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A4", &[]interface{}{"C2", "bad"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	got, err := roster.ReadCenters(bytes.NewReader(buf.Bytes()), roster.FormatXLSX)

	require.NoError(t, err)
	assert.Equal(t, []models.Center{{Name: "C1", PostalCode: 560010}}, got.Centers)
	require.Len(t, got.Rejected, 1)
	assert.Equal(t, 4, got.Rejected[0].Row)
	assert.Equal(t, roster.KindCenters, got.Rejected[0].Kind)
}

func TestReadCenters_NotAWorkbook(t *testing.T) {
	_, err := roster.ReadCenters(strings.NewReader("plain text"), roster.FormatXLSX)

	require.ErrorIs(t, err, roster.ErrFileFormat)
}

func TestLoadFromDisk(t *testing.T) {
	defer filet.CleanUp(t)
	dir := filet.TmpDir(t, "")

	studentsPath := filepath.Join(dir, "students.CSV")
	filet.File(t, studentsPath, "Student Name,Pincode\nAsha,560001\n")
	centersPath := filepath.Join(dir, "centers.csv")
	filet.File(t, centersPath, "Exam Center Name,Pincode\nC1,560010\n")

	students, err := roster.LoadStudents(studentsPath)
	require.NoError(t, err)
	assert.Len(t, students.Students, 1)

	centers, err := roster.LoadCenters(centersPath)
	require.NoError(t, err)
	assert.Len(t, centers.Centers, 1)

	_, err = roster.LoadStudents(filepath.Join(dir, "missing.csv"))
	require.Error(t, err)
}

func TestFormatFromPath(t *testing.T) {
	format, err := roster.FormatFromPath("list.xlsx")
	require.NoError(t, err)
	assert.Equal(t, roster.FormatXLSX, format)

	format, err = roster.FormatFromPath("/tmp/Students.Csv")
	require.NoError(t, err)
	assert.Equal(t, roster.FormatCSV, format)

	_, err = roster.FormatFromPath("students.txt")
	require.ErrorIs(t, err, roster.ErrFileFormat)
	assert.Contains(t, err.Error(), `".txt"`)
}

func TestReadStudents_RejectsOutOfRangePincodes(t *testing.T) {
	input := "Student Name,Pincode\n" +
		"Huge,1e300\n" +
		"Negative,-1\n" +
		"Wide,99999999999999999999\n" +
		"MaxInt,9223372036854775807\n" +
		"JustOver,1000000000\n" +
		"NegFloat,-5.0\n" +
		"Top,999999999\n" +
		"Zero,0\n"

	got, err := roster.ReadStudents(strings.NewReader(input), roster.FormatCSV)

	require.NoError(t, err)
	assert.Equal(t, []models.Student{
		{Name: "Top", PostalCode: roster.MaxPincode},
		{Name: "Zero", PostalCode: 0},
	}, got.Students)
	require.Len(t, got.Rejected, 6)
	for i, value := range []string{"1e300", "-1", "99999999999999999999", "9223372036854775807", "1000000000", "-5.0"} {
		assert.Equal(t, value, got.Rejected[i].Value)
		assert.Equal(t, i+2, got.Rejected[i].Row)
		require.ErrorIs(t, got.Rejected[i], roster.ErrFormat)
	}
}
