package locator_test

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/zatekoja/dentisalud-funnel/internal/domain/entities"
	"github.com/zatekoja/dentisalud-funnel/internal/locator"
)

func row(name, spec string) entities.DirectoryRow {
	return entities.DirectoryRow{ServicePointID: "A", ServicePointName: "Clínica A", PractitionerName: name, Specialty: spec}
}

func clinicRows() []entities.DirectoryRow {
	return []entities.DirectoryRow{
		row("Dr. Pérez", "Odontología General"),
		row("Dr. Pérez", "Odontología Implantes"),
		row("Clínica A", "Radiología Dental"),
	}
}

func TestGroupPractitioners_MergesRowsForSamePerson(t *testing.T) {
	g := locator.GroupPractitioners("Clínica A", clinicRows())

	want := []entities.GroupedPractitioner{
		{Name: "Dr. Pérez", Specialties: []string{"Implantes", "Odontología General"}},
	}
	if diff := cmp.Diff(want, g.Practitioners); diff != "" {
		t.Errorf("grouped practitioners mismatch (-want +got):\n%s", diff)
	}
}

func TestGroupPractitioners_SkipsBlankNames(t *testing.T) {
	rows := append(clinicRows(), row("", "Odontología Ortodoncia"), row("   ", "Odontología General"))

	g := locator.GroupPractitioners("Clínica A", rows)

	require.Len(t, g.Practitioners, 1)
	assert.Equal(t, "Dr. Pérez", g.Practitioners[0].Name)
	assert.Equal(t, []string{"Implantes", "Odontología General"}, g.Practitioners[0].Specialties)
}

func TestGroupPractitioners_SkipsReceptionRows(t *testing.T) {
	rows := []entities.DirectoryRow{
		{PractitionerName: "  CLÍNICA a ", Specialty: "Odontología General"},
		{PractitionerName: "Centro Dental Sol", CombinedName: "centro dental sol", Specialty: "Odontología General"},
		{PractitionerName: "Dra. Gómez", CombinedName: "Centro Dental Sol", Specialty: "Odontología Ortodoncia"},
	}

	g := locator.GroupPractitioners("Clínica A", rows)

	require.Len(t, g.Practitioners, 1)
	assert.Equal(t, "Dra. Gómez", g.Practitioners[0].Name)
}

func TestGroupPractitioners_RadiologyOnlyPersonIsListedWithoutSpecialties(t *testing.T) {
	rows := []entities.DirectoryRow{
		{PractitionerName: "Dr. Ruiz", Specialty: "Radiología Dental"},
	}

	g := locator.GroupPractitioners("Clínica A", rows)

	require.Len(t, g.Practitioners, 1)
	assert.Equal(t, "Dr. Ruiz", g.Practitioners[0].Name)
	assert.Empty(t, g.Practitioners[0].Specialties)
}

func TestGroupPractitioners_FirstCasingWins(t *testing.T) {
	rows := []entities.DirectoryRow{
		{PractitionerName: "Ana Martín", Specialty: "Odontología General"},
		{PractitionerName: "ANA MARTÍN ", Specialty: "Innovaciones tecnológicas bucodentales"},
	}

	g := locator.GroupPractitioners("Clínica A", rows)

	require.Len(t, g.Practitioners, 1)
	assert.Equal(t, "Ana Martín", g.Practitioners[0].Name)
	assert.Equal(t, []string{"Innovaciones", "Odontología General"}, g.Practitioners[0].Specialties)
}

func TestGroupPractitioners_UnknownSpecialtiesAreReportedNotShown(t *testing.T) {
	rows := []entities.DirectoryRow{
		{PractitionerName: "Dr. Vidal", Specialty: "Periodoncia"},
		{PractitionerName: "Dr. Vidal", Specialty: "Periodoncia"},
		{PractitionerName: "Dr. Vidal", Specialty: "Odontología General"},
	}

	g := locator.GroupPractitioners("Clínica A", rows)

	require.Len(t, g.Practitioners, 1)
	assert.Equal(t, []string{"Odontología General"}, g.Practitioners[0].Specialties)
	assert.Equal(t, []string{"Periodoncia"}, g.UnknownSpecialties)
}

func TestGroupPractitioners_PhoneFromFirstRow(t *testing.T) {
	rows := clinicRows()
	rows[0].Phone = " 912345678 "
	rows[1].Phone = "600000000"

	g := locator.GroupPractitioners("Clínica A", rows)
	assert.Equal(t, "912345678", g.Phone)

	rows[0].Phone = ""
	g = locator.GroupPractitioners("Clínica A", rows)
	assert.Empty(t, g.Phone)
}

func TestGroupPractitioners_NoQualifyingRows(t *testing.T) {
	g := locator.GroupPractitioners("Clínica A", nil)
	assert.NotNil(t, g.Practitioners)
	assert.Empty(t, g.Practitioners)

	g = locator.GroupPractitioners("Clínica A", []entities.DirectoryRow{row("Clínica A", "Odontología General")})
	assert.Empty(t, g.Practitioners)
}

func TestGroupPractitioners_Properties(t *testing.T) {
	names := []string{"Dr. Pérez", "dr. pérez", "Álvaro Núñez", "alvaro nuñez", "Beatriz", "Ñandú Ortiz", "Zoe", "Clínica A", "", "Óscar"}
	specs := []string{"Odontología General", "Odontología Implantes", "Odontología Ortodoncia", "Radiología Dental", "Innovaciones tecnológicas bucodentales", "Otra"}
	spanish := collate.New(language.Spanish)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		n := rng.Intn(30)
		rows := make([]entities.DirectoryRow, n)
		for j := range rows {
			rows[j] = row(names[rng.Intn(len(names))], specs[rng.Intn(len(specs))])
		}

		g := locator.GroupPractitioners("Clínica A", rows)

		seen := map[string]bool{}
		for k, p := range g.Practitioners {
			key := strings.ToLower(strings.TrimSpace(p.Name))
			assert.False(t, seen[key], "duplicate practitioner %q", p.Name)
			seen[key] = true
			assert.NotEqual(t, "clínica a", key)
			assert.NotContains(t, p.Specialties, locator.SpecialtyRadiology)
			if k > 0 {
				assert.LessOrEqual(t, spanish.CompareString(g.Practitioners[k-1].Name, p.Name), 0)
			}
		}
	}
}

func TestGroupPractitioners_OrderIndependent(t *testing.T) {
	rows := []entities.DirectoryRow{
		row("Zoe", "Odontología General"),
		row("Álvaro", "Odontología Ortodoncia"),
		row("Beatriz", "Odontología Implantes"),
		row("zoe", "Odontología Implantes"),
	}
	reversed := make([]entities.DirectoryRow, len(rows))
	for i := range rows {
		reversed[len(rows)-1-i] = rows[i]
	}

	a := locator.GroupPractitioners("Clínica A", rows)
	b := locator.GroupPractitioners("Clínica A", reversed)

	names := func(ps []entities.GroupedPractitioner) []string {
		out := make([]string, len(ps))
		for i, p := range ps {
			out[i] = strings.ToLower(p.Name)
		}
		return out
	}
	assert.Equal(t, []string{"álvaro", "beatriz", "zoe"}, names(a.Practitioners))
	assert.Equal(t, names(a.Practitioners), names(b.Practitioners))
}

func TestNormalizeSpecialties(t *testing.T) {
	got := locator.NormalizeSpecialties([]string{
		"Odontología Ortodoncia", "Radiología Dental", " Odontología General ", "Odontología Ortodoncia", "Desconocida",
	})
	assert.Equal(t, []string{"Odontología General", "Ortodoncia", "Radiología"}, got)
	assert.Equal(t, locator.SpecialtyUnknown, locator.NormalizeSpecialty(""))
}
