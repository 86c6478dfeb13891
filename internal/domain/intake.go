package domain

import (
    "regexp"
    "strings"

    "github.com/shopspring/decimal"
)

// Core domain models used internally. API types are generated from OpenAPI and
// sit in internal/api; keep these decoupled where helpful.

type ServiceType string

const (
    WaterDamage         ServiceType = "water_damage"
    FireDamage          ServiceType = "fire_damage"
    StormDamage         ServiceType = "storm_damage"
    FloodRecovery       ServiceType = "flood_recovery"
    MouldRemediation    ServiceType = "mould_remediation"
    SewageCleanup       ServiceType = "sewage_cleanup"
    BiohazardCleaning   ServiceType = "biohazard_cleaning"
    TraumaSceneCleaning ServiceType = "trauma_scene_cleaning"
    AsbestosRemoval     ServiceType = "asbestos_removal"
    VandalismRepair     ServiceType = "vandalism_repair"
    EmergencyBoardUp    ServiceType = "emergency_board_up"
    StructuralDamage    ServiceType = "structural_damage"
)

var serviceTypes = map[ServiceType]bool{
    WaterDamage: true, FireDamage: true, StormDamage: true, FloodRecovery: true,
    MouldRemediation: true, SewageCleanup: true, BiohazardCleaning: true,
    TraumaSceneCleaning: true, AsbestosRemoval: true, VandalismRepair: true,
    EmergencyBoardUp: true, StructuralDamage: true,
}

func (s ServiceType) Valid() bool { return serviceTypes[s] }

// relatedServices lists work that crews commonly carry across (water damage
// usually brings mould and sewage with it).
var relatedServices = map[ServiceType][]ServiceType{
    WaterDamage:         {MouldRemediation, FloodRecovery, SewageCleanup},
    FireDamage:          {VandalismRepair, EmergencyBoardUp},
    MouldRemediation:    {WaterDamage, FloodRecovery},
    StormDamage:         {EmergencyBoardUp, VandalismRepair},
    FloodRecovery:       {WaterDamage, MouldRemediation, SewageCleanup},
    SewageCleanup:       {WaterDamage, BiohazardCleaning},
    BiohazardCleaning:   {TraumaSceneCleaning, SewageCleanup},
    TraumaSceneCleaning: {BiohazardCleaning},
    VandalismRepair:     {FireDamage, EmergencyBoardUp},
    EmergencyBoardUp:    {StormDamage, FireDamage, VandalismRepair},
}

// Related reports whether other is listed as adjacent work for s.
func (s ServiceType) Related(other ServiceType) bool {
    for _, r := range relatedServices[s] {
        if r == other {
            return true
        }
    }
    return false
}

type Urgency string

const (
    UrgencyEmergency Urgency = "emergency"
    UrgencyUrgent    Urgency = "urgent"
    UrgencySoon      Urgency = "soon"
    UrgencyPlanning  Urgency = "planning"
    UrgencyRoutine   Urgency = "routine"
)

// Rank orders urgency tiers; emergency is highest. Unknown values rank 0.
func (u Urgency) Rank() int {
    switch u {
    case UrgencyEmergency:
        return 5
    case UrgencyUrgent:
        return 4
    case UrgencySoon:
        return 3
    case UrgencyPlanning:
        return 2
    case UrgencyRoutine:
        return 1
    }
    return 0
}

type PropertyType string

const (
    Residential PropertyType = "residential"
    Commercial  PropertyType = "commercial"
    Industrial  PropertyType = "industrial"
    Strata      PropertyType = "strata"
    Government  PropertyType = "government"
)

func (p PropertyType) Valid() bool {
    switch p {
    case Residential, Commercial, Industrial, Strata, Government:
        return true
    }
    return false
}

type AreaAffected string

const (
    AreaSingleRoom      AreaAffected = "single_room"
    AreaMultipleRooms   AreaAffected = "multiple_rooms"
    AreaEntireFloor     AreaAffected = "entire_floor"
    AreaEntireProperty  AreaAffected = "entire_property"
    AreaCommercialLarge AreaAffected = "commercial_large"
)

func (a AreaAffected) Valid() bool {
    switch a {
    case AreaSingleRoom, AreaMultipleRooms, AreaEntireFloor, AreaEntireProperty, AreaCommercialLarge:
        return true
    }
    return false
}

type ReadyToStart string

const (
    ReadyImmediately ReadyToStart = "immediately"
    ReadyWithinWeek  ReadyToStart = "within_week"
    ReadyWithinMonth ReadyToStart = "within_month"
    ReadyPlanning    ReadyToStart = "planning"
)

func (r ReadyToStart) Valid() bool {
    switch r {
    case ReadyImmediately, ReadyWithinWeek, ReadyWithinMonth, ReadyPlanning:
        return true
    }
    return false
}

type ContactMethod string

const (
    ContactPhone ContactMethod = "phone"
    ContactEmail ContactMethod = "email"
    ContactSMS   ContactMethod = "sms"
)

func (c ContactMethod) Valid() bool {
    return c == ContactPhone || c == ContactEmail || c == ContactSMS
}

var states = map[string]bool{
    "QLD": true, "NSW": true, "VIC": true, "SA": true,
    "WA": true, "TAS": true, "NT": true, "ACT": true,
}

var postcodeRe = regexp.MustCompile(`^\d{4}$`)

type Location struct {
    Suburb     string   `json:"suburb,omitempty"`
    State      string   `json:"state,omitempty"`
    Postcode   string   `json:"postcode,omitempty"`
    DistanceKm float64  `json:"distanceKm,omitempty"`
    Latitude   *float64 `json:"latitude,omitempty"`
    Longitude  *float64 `json:"longitude,omitempty"`
}

// HasCoordinates reports whether both latitude and longitude are set.
func (l Location) HasCoordinates() bool { return l.Latitude != nil && l.Longitude != nil }

type Contact struct {
    FullName string `json:"fullName,omitempty"`
    Email    string `json:"email,omitempty"`
    Phone    string `json:"phone,omitempty"`
}

type InsuranceDetails struct {
    Insurer      string          `json:"insurer,omitempty"`
    PolicyNumber string          `json:"policyNumber,omitempty"`
    ClaimNumber  string          `json:"claimNumber,omitempty"`
    ExcessAmount decimal.Decimal `json:"excessAmount"`
}

// IntakeRecord is the customer-submitted service request before scoring.
// It is never mutated after intake.
type IntakeRecord struct {
    ServiceType           ServiceType      `json:"serviceType,omitempty"`
    Urgency               Urgency          `json:"urgency,omitempty"`
    PropertyType          PropertyType     `json:"propertyType,omitempty"`
    HasInsurance          bool             `json:"hasInsurance"`
    PropertyValue         decimal.Decimal  `json:"propertyValue"`
    IsBusinessProperty    bool             `json:"isBusinessProperty"`
    EstimatedAreaAffected AreaAffected     `json:"estimatedAreaAffected,omitempty"`
    ReadyToStart          ReadyToStart     `json:"readyToStart,omitempty"`
    DecisionMaker         bool             `json:"decisionMaker"`
    HasPhotos             bool             `json:"hasPhotos"`
    ContactMethod         ContactMethod    `json:"contactMethod,omitempty"`
    Location              Location         `json:"location"`
    DamageTypes           []ServiceType    `json:"damageTypes,omitempty"`
    DamageDescription     string           `json:"damageDescription,omitempty"`
    PropertyAddress       string           `json:"propertyAddress,omitempty"`
    Contact               Contact          `json:"contact"`
    Insurance             InsuranceDetails `json:"insurance"`
    Budget                decimal.Decimal  `json:"budget"`
}

// ValidateEnums checks that every enum field that is present holds a known
// value. Missing fields are fine: they score zero.
func (in IntakeRecord) ValidateEnums() error {
    v := &ValidationError{}
    if in.ServiceType != "" && !in.ServiceType.Valid() {
        v.Add("serviceType", "unknown service type")
    }
    if in.Urgency != "" && in.Urgency.Rank() == 0 {
        v.Add("urgency", "must be one of emergency, urgent, soon, planning, routine")
    }
    if in.PropertyType != "" && !in.PropertyType.Valid() {
        v.Add("propertyType", "unknown property type")
    }
    if in.EstimatedAreaAffected != "" && !in.EstimatedAreaAffected.Valid() {
        v.Add("estimatedAreaAffected", "unknown area")
    }
    if in.ReadyToStart != "" && !in.ReadyToStart.Valid() {
        v.Add("readyToStart", "unknown readiness")
    }
    if in.ContactMethod != "" && !in.ContactMethod.Valid() {
        v.Add("contactMethod", "must be phone, email or sms")
    }
    for _, d := range in.DamageTypes {
        if !d.Valid() {
            v.Add("damageTypes", "unknown damage type "+string(d))
            break
        }
    }
    if in.PropertyValue.IsNegative() {
        v.Add("propertyValue", "must not be negative")
    }
    return v.OrNil()
}

// Validate is the full check applied before a record is created.
func (in IntakeRecord) Validate() error {
    v := &ValidationError{}
    if err := in.ValidateEnums(); err != nil {
        v.Merge(err.(*ValidationError))
    }
    if strings.TrimSpace(in.Contact.FullName) == "" {
        v.Add("contact.fullName", "required")
    }
    if in.Contact.Email == "" && in.Contact.Phone == "" {
        v.Add("contact", "email or phone required")
    }
    if in.Contact.Email != "" && !strings.Contains(in.Contact.Email, "@") {
        v.Add("contact.email", "invalid email")
    }
    if in.ServiceType == "" {
        v.Add("serviceType", "required")
    }
    if in.Urgency == "" {
        v.Add("urgency", "required")
    }
    if in.PropertyType == "" {
        v.Add("propertyType", "required")
    }
    if !states[strings.ToUpper(in.Location.State)] {
        v.Add("location.state", "must be an Australian state or territory code")
    }
    if !postcodeRe.MatchString(in.Location.Postcode) {
        v.Add("location.postcode", "must be 4 digits")
    }
    return v.OrNil()
}
