package domain

import (
    "errors"
    "testing"
    "time"

    "github.com/shopspring/decimal"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func validIntake() IntakeRecord {
    return IntakeRecord{
        ServiceType:  WaterDamage,
        Urgency:      UrgencyUrgent,
        PropertyType: Residential,
        Contact:      Contact{FullName: "Jo Citizen", Phone: "0400000000"},
        Location:     Location{Suburb: "Fortitude Valley", State: "qld", Postcode: "4006"},
    }
}

func TestIntakeValidate(t *testing.T) {
    require.NoError(t, validIntake().Validate())

    in := validIntake()
    in.Contact = Contact{}
    in.Location.Postcode = "40"
    in.Urgency = "whenever"
    err := in.Validate()
    var ve *ValidationError
    require.True(t, errors.As(err, &ve))
    assert.Contains(t, ve.Fields, "contact.fullName")
    assert.Contains(t, ve.Fields, "contact")
    assert.Contains(t, ve.Fields, "location.postcode")
    assert.Contains(t, ve.Fields, "urgency")
}

func TestValidateEnumsAllowsMissingFields(t *testing.T) {
    assert.NoError(t, IntakeRecord{}.ValidateEnums())

    err := IntakeRecord{PropertyValue: decimal.NewFromInt(-1)}.ValidateEnums()
    assert.Error(t, err)
}

func TestMoveGuardsTransitions(t *testing.T) {
    now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
    rec := ServiceRecord{ID: "r1", Status: StatusNew, LastError: "assign failed"}

    require.NoError(t, rec.Move(StatusAssigned, now, "system", ""))
    assert.Empty(t, rec.LastError)
    require.NoError(t, rec.Move(StatusAccepted, now, "client", ""))

    rec.LastError = "record_kpi failed"
    err := rec.Move(StatusAssigned, now, "system", "")
    assert.ErrorIs(t, err, ErrConflict)
    assert.Equal(t, StatusAccepted, rec.Status)
    assert.Equal(t, "record_kpi failed", rec.LastError)
    assert.Len(t, rec.History, 2)

    require.NoError(t, rec.Move(StatusCompleted, now, "client", ""))
    assert.True(t, rec.Status.Terminal())
    assert.ErrorIs(t, rec.Move(StatusCancelled, now, "client", ""), ErrConflict)
}

func TestCloneDoesNotShareSlices(t *testing.T) {
    rec := ServiceRecord{History: []HistoryEntry{{To: StatusNew}}, Contractor: &ContractorAssignment{ID: "c1"}}
    cp := rec.Clone()
    cp.History[0].To = StatusCancelled
    cp.Contractor.ID = "c2"
    assert.Equal(t, StatusNew, rec.History[0].To)
    assert.Equal(t, "c1", rec.Contractor.ID)
}

func TestDetectEmergency(t *testing.T) {
    ok, kws := DetectEmergency("Water is FLOODING the kitchen, please help now")
    assert.True(t, ok)
    assert.ElementsMatch(t, []string{"flooding", "help now"}, kws)

    ok, kws = DetectEmergency("just getting a quote for next month")
    assert.False(t, ok)
    assert.Empty(t, kws)
}

func TestClassifyDamage(t *testing.T) {
    got := ClassifyDamage("Burst pipe overnight, now there is mould on the wall")
    assert.Equal(t, []ServiceType{WaterDamage, MouldRemediation}, got)
}

func TestContractorCompliancePredicates(t *testing.T) {
    now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
    c := Contractor{
        Certifications: []Certification{{Name: "IICRC WRT", Expiry: now.AddDate(1, 0, 0), Verified: true}},
        Insurance:      ContractorInsurance{PublicLiability: true, Expiry: now.AddDate(0, 6, 0), DocumentVerified: true},
    }
    assert.True(t, c.HasValidCertification(now))
    assert.True(t, c.InsuranceCurrent(now))
    assert.True(t, c.DocumentsVerified())

    c.Certifications[0].Expiry = now.AddDate(0, 0, -1)
    assert.False(t, c.HasValidCertification(now))
}
