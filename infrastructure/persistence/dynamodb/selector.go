package dynamodb

import "communityapp/application/queries"

// filterKind names one recognized person filter dimension.
type filterKind string

const (
	filterLocation      filterKind = "location"
	filterCompany       filterKind = "company"
	filterJobTitle      filterKind = "jobTitle"
	filterHostedCount   filterKind = "hostedCount"
	filterAttendedCount filterKind = "attendedCount"
	filterNone          filterKind = ""
)

// indexSelectivity is a fixed configuration map, deliberately not learned
// from data. Lower means assumed more selective.
var indexSelectivity = map[filterKind]float64{
	filterLocation:      0.05,
	filterCompany:       0.10,
	filterJobTitle:      0.20,
	filterHostedCount:   0.80,
	filterAttendedCount: 0.80,
}

// selectorOrder breaks selectivity ties: the first kind in this order with
// the minimal value wins.
var selectorOrder = []filterKind{
	filterLocation,
	filterCompany,
	filterJobTitle,
	filterHostedCount,
	filterAttendedCount,
}

type strategyType string

const (
	strategyQuery strategyType = "gsi_query"
	strategyScan  strategyType = "scan"
)

// Over-fetch multipliers compensate for rows lost to in-memory residual
// filtering: a scan is assumed to lose more than an index query.
const (
	queryOverfetch = 3
	scanOverfetch  = 5
)

// queryStrategy is the plan for one Filter call: either a range query
// against a single chosen index, or a full profile scan. Everything not
// served by the chosen index is applied in memory.
type queryStrategy struct {
	Type           strategyType
	Primary        filterKind
	IndexName      string
	PartitionAttr  string
	PartitionValue string
	Overfetch      int
}

type indexBinding struct {
	indexName     string
	partitionAttr string
}

var filterIndexes = map[filterKind]indexBinding{
	filterLocation:      {gsiByLocation, "GSI_ByLocation_PK"},
	filterCompany:       {gsiByCompany, "GSI_ByCompany_PK"},
	filterJobTitle:      {gsiByJobTitle, "GSI_ByJobTitle_PK"},
	filterHostedCount:   {gsiByHostedCount, "GSI_ByHostedCount_PK"},
	filterAttendedCount: {gsiByAttendedCount, "GSI_ByAttendedCount_PK"},
}

func activeKinds(f queries.PersonFilter) []filterKind {
	var kinds []filterKind
	if f.HasLocation() {
		kinds = append(kinds, filterLocation)
	}
	if f.Company != nil {
		kinds = append(kinds, filterCompany)
	}
	if f.JobTitle != nil {
		kinds = append(kinds, filterJobTitle)
	}
	if f.HostedCount != nil {
		kinds = append(kinds, filterHostedCount)
	}
	if f.AttendedCount != nil {
		kinds = append(kinds, filterAttendedCount)
	}
	return kinds
}

// chooseStrategy picks the single most selective index for the filter set,
// or falls back to a full scan when no recognized filter is present. Only
// one index is ever used; intersection across indexes is out of scope.
func chooseStrategy(f queries.PersonFilter) queryStrategy {
	active := make(map[filterKind]bool)
	for _, k := range activeKinds(f) {
		active[k] = true
	}

	best := filterNone
	for _, k := range selectorOrder {
		if !active[k] {
			continue
		}
		if best == filterNone || indexSelectivity[k] < indexSelectivity[best] {
			best = k
		}
	}

	if best == filterNone {
		return queryStrategy{Type: strategyScan, Primary: filterNone, Overfetch: scanOverfetch}
	}

	binding := filterIndexes[best]
	s := queryStrategy{
		Type:          strategyQuery,
		Primary:       best,
		IndexName:     binding.indexName,
		PartitionAttr: binding.partitionAttr,
		Overfetch:     queryOverfetch,
	}

	switch best {
	case filterLocation:
		s.PartitionValue = locationPartition(*f.State, *f.City)
	case filterCompany:
		s.PartitionValue = companyPartition(*f.Company)
	case filterJobTitle:
		s.PartitionValue = jobTitlePartition(*f.JobTitle)
	case filterHostedCount, filterAttendedCount:
		// Count indexes share one partition; the range itself is applied
		// in memory against the returned rows.
		s.PartitionValue = activityProfilePartition
	}

	return s
}

// residualKinds returns every active kind except the primary, i.e. the
// filters applied in memory after retrieval.
func residualKinds(f queries.PersonFilter, primary filterKind) []filterKind {
	var out []filterKind
	for _, k := range activeKinds(f) {
		if k != primary {
			out = append(out, k)
		}
	}
	return out
}
