package domain

import (
	"fmt"
	"math"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ReportType string

const (
	ReportWeight  ReportType = "peso"
	ReportHeight  ReportType = "altura"
	ReportArm     ReportType = "medidas_braco"
	ReportLeg     ReportType = "medidas_perna"
	ReportWaist   ReportType = "medidas_cintura"
	ReportBodyFat ReportType = "gordura_corporal"
	ReportBMI     ReportType = "IMC"
)

func (t ReportType) Valid() bool {
	switch t {
	case ReportWeight, ReportHeight, ReportArm, ReportLeg, ReportWaist, ReportBodyFat, ReportBMI:
		return true
	}
	return false
}

// Report is a single dated measurement sample of a student.
// TrainerID is nil for samples recorded outside a trainer's roster.
type Report struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	StudentID primitive.ObjectID  `bson:"studentId" json:"alunoId"`
	TrainerID *primitive.ObjectID `bson:"trainerId,omitempty" json:"personalId,omitempty"`
	Type      ReportType          `bson:"type" json:"tipo"`
	Value     float64             `bson:"value" json:"valor"`
	Date      time.Time           `bson:"date" json:"data"`
	Note      string              `bson:"note,omitempty" json:"observacao,omitempty"`
	CreatedAt time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// DefaultBMINote is stored on BMI samples synced without a note.
const DefaultBMINote = "Calculado automaticamente"

// GroupReportsByType buckets reports by their type, keeping the input order.
func GroupReportsByType(reports []Report) map[ReportType][]Report {
	grouped := make(map[ReportType][]Report)
	for _, r := range reports {
		grouped[r.Type] = append(grouped[r.Type], r)
	}
	return grouped
}

// DeriveBMI pairs weight and height samples taken on the same calendar day and
// computes the BMI for each pair. Height is in centimetres, weight in kilograms.
// Derived samples have a zero ID; they are never persisted.
func DeriveBMI(weights, heights []Report) []Report {
	byDay := make(map[string]float64, len(weights))
	for _, w := range weights {
		byDay[dayKey(w.Date)] = w.Value
	}

	var derived []Report
	for _, h := range heights {
		weight, ok := byDay[dayKey(h.Date)]
		if !ok || h.Value <= 0 {
			continue
		}
		meters := h.Value / 100
		derived = append(derived, Report{
			StudentID: h.StudentID,
			Type:      ReportBMI,
			Value:     RoundTo(weight/(meters*meters), 2),
			Date:      h.Date,
			Note:      fmt.Sprintf("%s: Peso %gkg, Altura %gcm", DefaultBMINote, weight, h.Value),
		})
	}
	sort.SliceStable(derived, func(i, j int) bool { return derived[i].Date.After(derived[j].Date) })
	return derived
}

// RoundTo rounds v half away from zero to the given number of decimals.
func RoundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}

func dayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
