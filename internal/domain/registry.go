package domain

import "strings"

// definitions is the static observation catalogue. Ids and canonical names
// follow the Easee cloud observation numbering; AltNames carry the field
// names the REST charger-state endpoint uses for the same observation.
// The table is ordered by id for readability only - all lookups go through
// the indexes built in newIndex.
var definitions = []Definition{
	{ID: 1, Name: "SelfTestResult", DataType: String},
	{ID: 2, Name: "SelfTestDetails", DataType: JSON},

	{ID: 10, Name: "ErraticEVMaxToggles", DataType: Integer},
	{ID: 11, Name: "ChargerOfflineReason", DataType: Integer},
	{ID: 12, Name: "BackplateType", DataType: Integer},
	{ID: 13, Name: "EaseeLinkCommandResponse", DataType: Integer},
	{ID: 14, Name: "EaseeLinkDataReceived", DataType: String},
	{ID: 15, Name: "LocalPreAuthorizeRequired", AltNames: []string{"localPreAuthorizeRequired"}, DataType: Boolean},
	{ID: 16, Name: "LocalAuthorizeOfflineRequired", AltNames: []string{"localAuthorizeOfflineRequired"}, DataType: Boolean},
	{ID: 17, Name: "AllowOfflineTxForUnknownId", AltNames: []string{"allowOfflineTxForUnknownId"}, DataType: Boolean},

	{ID: 20, Name: "SiteStructure", DataType: String},
	{ID: 21, Name: "DetectedPowerGridType", DataType: Integer, ValueMapping: []ValueText{
		{Key: "0", Text: "Not yet detected"},
		{Key: "1", Text: "TN 3-phase"},
		{Key: "2", Text: "TN 2-phase (pin 2, 3, 4)"},
		{Key: "3", Text: "TN 1-phase"},
		{Key: "4", Text: "IT 3-phase"},
		{Key: "5", Text: "IT 1-phase"},
		{Key: "6", Text: "Warning: TN 2-phase (pin 2, 3, 5)"},
		{Key: "7", Text: "Warning: TN 1-phase, neutral on pin 3"},
		{Key: "8", Text: "Warning: IT ground fault"},
		{Key: "9", Text: "Warning: IT ground fault on L3"},
		{Key: "10", Text: "Warning: TN 400V, neutral on wrong pin"},
	}},
	{ID: 22, Name: "CircuitMaxCurrentP1", AltNames: []string{"circuitMaxCurrentP1"}, DataType: Double, Unit: "A"},
	{ID: 23, Name: "CircuitMaxCurrentP2", AltNames: []string{"circuitMaxCurrentP2"}, DataType: Double, Unit: "A"},
	{ID: 24, Name: "CircuitMaxCurrentP3", AltNames: []string{"circuitMaxCurrentP3"}, DataType: Double, Unit: "A"},
	{ID: 25, Name: "Location", DataType: Integer},
	{ID: 26, Name: "SiteIDString", DataType: String},
	{ID: 27, Name: "SiteIDNumeric", DataType: Integer},

	{ID: 30, Name: "LockCablePermanently", AltNames: []string{"lockCablePermanently"}, DataType: Boolean},
	{ID: 31, Name: "IsEnabled", AltNames: []string{"isEnabled"}, DataType: Boolean},
	{ID: 33, Name: "CircuitSequenceNumber", DataType: Integer},
	{ID: 34, Name: "SinglePhaseNumber", DataType: Integer},
	{ID: 35, Name: "Enable3Phases_DEPRECATED", DataType: Boolean},
	{ID: 36, Name: "WiFiSSID", AltNames: []string{"wiFiSSID"}, DataType: String},
	{ID: 37, Name: "EnableIdleCurrent", AltNames: []string{"enableIdleCurrent"}, DataType: Boolean},
	{ID: 38, Name: "PhaseMode", AltNames: []string{"phaseMode"}, DataType: Integer, ValueMapping: []ValueText{
		{Key: "1", Text: "Locked to 1-phase"},
		{Key: "2", Text: "Auto phase"},
		{Key: "3", Text: "Locked to 3-phase"},
	}},

	{ID: 40, Name: "LedStripBrightness", AltNames: []string{"ledStripBrightness"}, DataType: Integer, Unit: "%"},
	{ID: 41, Name: "LocalAuthorizationRequired", AltNames: []string{"localAuthorizationRequired"}, DataType: Boolean},
	{ID: 42, Name: "AuthorizationRequired", AltNames: []string{"authorizationRequired"}, DataType: Boolean},
	{ID: 43, Name: "RemoteStartRequired", AltNames: []string{"remoteStartRequired"}, DataType: Boolean},
	{ID: 44, Name: "SmartButtonEnabled", AltNames: []string{"smartButtonEnabled"}, DataType: Boolean},
	{ID: 45, Name: "OfflineChargingMode", AltNames: []string{"offlineChargingMode"}, DataType: Integer, ValueMapping: []ValueText{
		{Key: "0", Text: "Always allow charging if offline"},
		{Key: "1", Text: "Only allow charging if token is whitelisted"},
		{Key: "2", Text: "Never allow charging if offline"},
	}},
	{ID: 46, Name: "LEDMode", AltNames: []string{"ledMode"}, DataType: Integer},
	{ID: 47, Name: "MaxChargerCurrent", AltNames: []string{"maxChargerCurrent"}, DataType: Double, Unit: "A"},
	{ID: 48, Name: "DynamicChargerCurrent", AltNames: []string{"dynamicChargerCurrent"}, DataType: Double, Unit: "A"},
	{ID: 50, Name: "MaxCurrentOfflineFallback_P1", DataType: Integer, Unit: "A"},
	{ID: 51, Name: "MaxCurrentOfflineFallback_P2", DataType: Integer, Unit: "A"},
	{ID: 52, Name: "MaxCurrentOfflineFallback_P3", DataType: Integer, Unit: "A"},

	{ID: 62, Name: "ChargingSchedule", AltNames: []string{"chargingSchedule"}, DataType: JSON},
	{ID: 68, Name: "WiFiAPEnabled", AltNames: []string{"wiFiAPEnabled"}, DataType: Boolean},
	{ID: 69, Name: "PairedUserIDToken", DataType: String},

	{ID: 70, Name: "CircuitTotalAllocatedPhaseConductorCurrent_L1", AltNames: []string{"circuitTotalAllocatedPhaseConductorCurrentL1"}, DataType: Double, Unit: "A"},
	{ID: 71, Name: "CircuitTotalAllocatedPhaseConductorCurrent_L2", AltNames: []string{"circuitTotalAllocatedPhaseConductorCurrentL2"}, DataType: Double, Unit: "A"},
	{ID: 72, Name: "CircuitTotalAllocatedPhaseConductorCurrent_L3", AltNames: []string{"circuitTotalAllocatedPhaseConductorCurrentL3"}, DataType: Double, Unit: "A"},
	{ID: 73, Name: "CircuitTotalPhaseConductorCurrent_L1", AltNames: []string{"circuitTotalPhaseConductorCurrentL1"}, DataType: Double, Unit: "A"},
	{ID: 74, Name: "CircuitTotalPhaseConductorCurrent_L2", AltNames: []string{"circuitTotalPhaseConductorCurrentL2"}, DataType: Double, Unit: "A"},
	{ID: 75, Name: "CircuitTotalPhaseConductorCurrent_L3", AltNames: []string{"circuitTotalPhaseConductorCurrentL3"}, DataType: Double, Unit: "A"},

	{ID: 80, Name: "SoftwareRelease", AltNames: []string{"chargerFirmware"}, DataType: Integer},
	{ID: 81, Name: "ICCID", DataType: String},
	{ID: 82, Name: "ModemFwId", DataType: String},
	{ID: 83, Name: "OTAErrorCode", DataType: Integer},
	{ID: 89, Name: "RebootReason", DataType: Integer},
	{ID: 90, Name: "PowerPCBVersion", DataType: Integer},
	{ID: 91, Name: "ComPCBVersion", DataType: Integer},

	{ID: 96, Name: "ReasonForNoCurrent", AltNames: []string{"reasonForNoCurrent"}, DataType: Integer, ValueMapping: []ValueText{
		{Key: "0", Text: "OK, charging or ready to charge"},
		{Key: "1", Text: "Max circuit current too low"},
		{Key: "2", Text: "Max dynamic circuit current too low"},
		{Key: "3", Text: "Max dynamic offline fallback circuit current too low"},
		{Key: "4", Text: "Circuit fuse too low"},
		{Key: "5", Text: "Waiting in queue"},
		{Key: "6", Text: "Waiting in fully charged queue"},
		{Key: "7", Text: "Illegal grid type"},
		{Key: "8", Text: "No current request received from primary unit"},
		{Key: "9", Text: "Primary unit communication lost"},
		{Key: "25", Text: "Limited by circuit fuse"},
		{Key: "26", Text: "Limited by circuit max current"},
		{Key: "27", Text: "Limited by dynamic circuit current"},
		{Key: "28", Text: "Limited by equalizer"},
		{Key: "29", Text: "Limited by circuit load balancing"},
		{Key: "50", Text: "Secondary unit not requesting current"},
		{Key: "51", Text: "Max charger current too low"},
		{Key: "52", Text: "Max dynamic charger current too low"},
		{Key: "53", Text: "Charger disabled"},
		{Key: "54", Text: "Pending scheduled charging"},
		{Key: "55", Text: "Pending authorization"},
		{Key: "56", Text: "Charger in error state"},
		{Key: "57", Text: "Erratic EV"},
		{Key: "100", Text: "Undefined"},
	}},
	{ID: 97, Name: "LoadBalancingNumberOfConnectedChargers", DataType: Integer},
	{ID: 98, Name: "UDPNumOfConnectedNodes", DataType: Integer},
	{ID: 99, Name: "LocalConnection", DataType: Integer},

	{ID: 100, Name: "PilotMode", AltNames: []string{"pilotMode"}, DataType: String, ValueMapping: []ValueText{
		{Key: "A", Text: "Car disconnected"},
		{Key: "B", Text: "Car connected"},
		{Key: "C", Text: "Car charging"},
		{Key: "D", Text: "Car needs ventilation"},
		{Key: "F", Text: "Fault detected"},
	}},
	{ID: 101, Name: "CarConnected_DEPRECATED", DataType: Boolean},
	{ID: 102, Name: "SmartCharging", AltNames: []string{"smartCharging"}, DataType: Boolean},
	{ID: 103, Name: "CableLocked", AltNames: []string{"cableLocked"}, DataType: Boolean},
	{ID: 104, Name: "CableRating", AltNames: []string{"cableRating"}, DataType: Double, Unit: "A"},
	{ID: 105, Name: "PilotHigh", DataType: Double, Unit: "V"},
	{ID: 106, Name: "PilotLow", DataType: Double, Unit: "V"},
	{ID: 107, Name: "BackPlateID", AltNames: []string{"backPlateId"}, DataType: String},
	{ID: 108, Name: "UserIDTokenReversed", DataType: String},
	{ID: 109, Name: "ChargerOpMode", AltNames: []string{"chargerOpMode"}, DataType: Integer, ValueMapping: []ValueText{
		{Key: "0", Text: "Offline"},
		{Key: "1", Text: "Disconnected"},
		{Key: "2", Text: "Awaiting start"},
		{Key: "3", Text: "Charging"},
		{Key: "4", Text: "Completed"},
		{Key: "5", Text: "Error"},
		{Key: "6", Text: "Ready to charge"},
		{Key: "7", Text: "Awaiting authentication"},
		{Key: "8", Text: "De-authenticating"},
	}},
	{ID: 110, Name: "OutputPhase", AltNames: []string{"outputPhase"}, DataType: Integer, ValueMapping: []ValueText{
		{Key: "0", Text: "Unassigned"},
		{Key: "10", Text: "1-phase (N+L1)"},
		{Key: "11", Text: "1-phase (L1+L2)"},
		{Key: "12", Text: "1-phase (N+L2)"},
		{Key: "13", Text: "1-phase (L1+L3)"},
		{Key: "14", Text: "1-phase (N+L3)"},
		{Key: "15", Text: "1-phase (L2+L3)"},
		{Key: "20", Text: "2-phase (N+L1, N+L2)"},
		{Key: "21", Text: "2-phase (N+L2, N+L3)"},
		{Key: "22", Text: "2-phase (N+L1, N+L3)"},
		{Key: "30", Text: "3-phase"},
	}},
	{ID: 111, Name: "DynamicCircuitCurrentP1", AltNames: []string{"dynamicCircuitCurrentP1"}, DataType: Double, Unit: "A"},
	{ID: 112, Name: "DynamicCircuitCurrentP2", AltNames: []string{"dynamicCircuitCurrentP2"}, DataType: Double, Unit: "A"},
	{ID: 113, Name: "DynamicCircuitCurrentP3", AltNames: []string{"dynamicCircuitCurrentP3"}, DataType: Double, Unit: "A"},
	{ID: 114, Name: "OutputCurrent", AltNames: []string{"outputCurrent"}, DataType: Double, Unit: "A"},
	{ID: 115, Name: "DeratedCurrent", AltNames: []string{"deratedCurrent"}, DataType: Double, Unit: "A"},
	{ID: 116, Name: "DeratingActive", AltNames: []string{"deratingActive"}, DataType: Boolean},
	{ID: 117, Name: "DebugString", DataType: String},
	{ID: 118, Name: "ErrorString", DataType: String},
	{ID: 119, Name: "ErrorCode", AltNames: []string{"errorCode"}, DataType: Integer},
	{ID: 120, Name: "TotalPower", AltNames: []string{"totalPower"}, DataType: Double, Unit: "kW"},
	{ID: 121, Name: "SessionEnergy", AltNames: []string{"sessionEnergy"}, DataType: Double, Unit: "kWh"},
	{ID: 122, Name: "EnergyPerHour", AltNames: []string{"energyPerHour"}, DataType: Double, Unit: "kWh"},
	{ID: 123, Name: "LegacyEvConnected", DataType: Boolean},
	{ID: 124, Name: "LifetimeEnergy", AltNames: []string{"lifetimeEnergy"}, DataType: Double, Unit: "kWh"},
	{ID: 125, Name: "LifetimeRelaySwitches", DataType: Integer},
	{ID: 126, Name: "LifetimeHours", DataType: Integer, Unit: "h"},
	{ID: 127, Name: "DynamicCurrentOfflineFallback_DEPRICATED", DataType: Integer, Unit: "A"},
	{ID: 128, Name: "UserIDToken", DataType: String},
	{ID: 129, Name: "ChargingSession", DataType: JSON},

	{ID: 130, Name: "CellRSSI", AltNames: []string{"cellRSSI"}, DataType: Integer, Unit: "dBm"},
	{ID: 131, Name: "CellRAT", AltNames: []string{"chargerRAT"}, DataType: Integer, ValueMapping: []ValueText{
		{Key: "0", Text: "Unknown"},
		{Key: "1", Text: "GSM (2G)"},
		{Key: "2", Text: "UMTS (3G)"},
		{Key: "4", Text: "LTE (4G)"},
		{Key: "7", Text: "LTE Cat M1"},
		{Key: "9", Text: "NB-IoT"},
	}},
	{ID: 132, Name: "WiFiRSSI", AltNames: []string{"wiFiRSSI"}, DataType: Integer, Unit: "dBm"},
	{ID: 133, Name: "CellAddress", DataType: String},
	{ID: 134, Name: "WiFiAddress", DataType: String},
	{ID: 135, Name: "WiFiType", DataType: String},
	{ID: 136, Name: "LocalRSSI", AltNames: []string{"localRSSI"}, DataType: Integer, Unit: "dBm"},
	{ID: 137, Name: "MasterBackPlateID", AltNames: []string{"masterBackPlateId"}, DataType: String},
	{ID: 138, Name: "LocalTxPower", DataType: Integer, Unit: "dBm"},
	{ID: 139, Name: "LocalState", DataType: Integer},
	{ID: 140, Name: "FoundWiFi", DataType: String},
	{ID: 141, Name: "LocalRadioChannel", DataType: Integer},
	{ID: 142, Name: "LocalShortAddress", DataType: Integer},
	{ID: 143, Name: "LocalParentAddrOrNumOfNodes", DataType: Integer},

	{ID: 145, Name: "TempMax", DataType: Double, Unit: "C"},
	{ID: 150, Name: "TempAmbient", DataType: Double, Unit: "C"},
	{ID: 151, Name: "LightAmbient", DataType: Integer, Unit: "%"},
	{ID: 152, Name: "IntRelHumidity", DataType: Integer, Unit: "%"},
	{ID: 153, Name: "BackPlateLocked", AltNames: []string{"backPlateLocked"}, DataType: Boolean},
	{ID: 154, Name: "CurrentMotor", DataType: Double, Unit: "A"},
	{ID: 155, Name: "BackPlateHallSensor", DataType: Integer},

	{ID: 182, Name: "InCurrent_T2", AltNames: []string{"inCurrentT2"}, DataType: Double, Unit: "A"},
	{ID: 183, Name: "InCurrent_T3", AltNames: []string{"inCurrentT3"}, DataType: Double, Unit: "A"},
	{ID: 184, Name: "InCurrent_T4", AltNames: []string{"inCurrentT4"}, DataType: Double, Unit: "A"},
	{ID: 185, Name: "InCurrent_T5", AltNames: []string{"inCurrentT5"}, DataType: Double, Unit: "A"},

	{ID: 190, Name: "InVolt_T1_T2", AltNames: []string{"inVoltageT1T2"}, DataType: Double, Unit: "V"},
	{ID: 191, Name: "InVolt_T1_T3", AltNames: []string{"inVoltageT1T3"}, DataType: Double, Unit: "V"},
	{ID: 192, Name: "InVolt_T1_T4", AltNames: []string{"inVoltageT1T4"}, DataType: Double, Unit: "V"},
	{ID: 193, Name: "InVolt_T1_T5", AltNames: []string{"inVoltageT1T5"}, DataType: Double, Unit: "V"},
	{ID: 194, Name: "InVolt_T2_T3", AltNames: []string{"inVoltageT2T3"}, DataType: Double, Unit: "V"},
	{ID: 195, Name: "InVolt_T2_T4", AltNames: []string{"inVoltageT2T4"}, DataType: Double, Unit: "V"},
	{ID: 196, Name: "InVolt_T2_T5", AltNames: []string{"inVoltageT2T5"}, DataType: Double, Unit: "V"},
	{ID: 197, Name: "InVolt_T3_T4", AltNames: []string{"inVoltageT3T4"}, DataType: Double, Unit: "V"},
	{ID: 198, Name: "InVolt_T3_T5", AltNames: []string{"inVoltageT3T5"}, DataType: Double, Unit: "V"},
	{ID: 199, Name: "InVolt_T4_T5", AltNames: []string{"inVoltageT4T5"}, DataType: Double, Unit: "V"},

	{ID: 202, Name: "OutVoltPin1_2", DataType: Double, Unit: "V"},
	{ID: 203, Name: "OutVoltPin1_3", DataType: Double, Unit: "V"},
	{ID: 204, Name: "OutVoltPin1_4", DataType: Double, Unit: "V"},
	{ID: 205, Name: "OutVoltPin1_5", DataType: Double, Unit: "V"},
	{ID: 210, Name: "OutVoltPin2_3", DataType: Double, Unit: "V"},
	{ID: 211, Name: "OutVoltPin2_4", DataType: Double, Unit: "V"},
	{ID: 212, Name: "OutVoltPin2_5", DataType: Double, Unit: "V"},
	{ID: 213, Name: "OutVoltPin3_4", DataType: Double, Unit: "V"},
	{ID: 214, Name: "OutVoltPin3_5", DataType: Double, Unit: "V"},
	{ID: 215, Name: "OutVoltPin4_5", DataType: Double, Unit: "V"},

	{ID: 220, Name: "EqAvailableCurrentP1", DataType: Double, Unit: "A"},
	{ID: 221, Name: "EqAvailableCurrentP2", DataType: Double, Unit: "A"},
	{ID: 222, Name: "EqAvailableCurrentP3", DataType: Double, Unit: "A"},

	{ID: 230, Name: "ConnectedToCloud", AltNames: []string{"isOnline"}, DataType: Boolean},
}

// index holds the precomputed lookup tables over definitions. Built once,
// read-only afterwards.
type index struct {
	byID         map[int]*Definition
	byName       map[string]*Definition // canonical name, case-sensitive
	byLowerName  map[string]*Definition // canonical name, lower-cased
	byAltName    map[string]*Definition // alternate names, case-sensitive
	byAltLower   map[string]*Definition // alternate names, lower-cased
	byNormalized map[string]*Definition // canonical + alternate names, normalized
}

// newIndex folds the definition table into the lookup maps. Earlier entries
// win on key collisions so table order stays authoritative.
func newIndex(defs []Definition) *index {
	idx := &index{
		byID:         make(map[int]*Definition, len(defs)),
		byName:       make(map[string]*Definition, len(defs)),
		byLowerName:  make(map[string]*Definition, len(defs)),
		byAltName:    make(map[string]*Definition, len(defs)),
		byAltLower:   make(map[string]*Definition, len(defs)),
		byNormalized: make(map[string]*Definition, len(defs)),
	}
	for i := range defs {
		def := &defs[i]
		if _, ok := idx.byID[def.ID]; !ok {
			idx.byID[def.ID] = def
		}
		put(idx.byName, def.Name, def)
		put(idx.byLowerName, strings.ToLower(def.Name), def)
		put(idx.byNormalized, normalizeName(def.Name), def)
		for _, alt := range def.AltNames {
			put(idx.byAltName, alt, def)
			put(idx.byAltLower, strings.ToLower(alt), def)
			put(idx.byNormalized, normalizeName(alt), def)
		}
	}
	return idx
}

func put(m map[string]*Definition, key string, def *Definition) {
	if _, ok := m[key]; !ok {
		m[key] = def
	}
}

var registry = newIndex(definitions)

// LookupByID returns the definition for a numeric observation id.
func LookupByID(id int) (*Definition, bool) {
	def, ok := registry.byID[id]
	return def, ok
}

// LookupByName resolves a field name to a definition. Matching tiers, first
// hit wins: exact canonical name, case-insensitive canonical name, exact or
// case-insensitive alternate name, then a normalized comparison that strips
// all non-alphanumeric characters and lower-cases both sides. Only
// full-string equality is permitted under each transform; substring matches
// would collide on names like InCurrent_T2 vs InCurrent_T23.
func LookupByName(name string) (*Definition, bool) {
	if def, ok := registry.byName[name]; ok {
		return def, true
	}
	if def, ok := registry.byLowerName[strings.ToLower(name)]; ok {
		return def, true
	}
	if def, ok := registry.byAltName[name]; ok {
		return def, true
	}
	if def, ok := registry.byAltLower[strings.ToLower(name)]; ok {
		return def, true
	}
	if def, ok := registry.byNormalized[normalizeName(name)]; ok {
		return def, true
	}
	return nil, false
}

// Definitions returns the full observation catalogue in table order.
// The returned slice is shared and must not be modified.
func Definitions() []Definition {
	return definitions
}
