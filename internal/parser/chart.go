package parser

// Chart represents a complete S-57 Electronic Navigational Chart after updates
// have been merged.
//
// Reference: S-57 Part 3 §7 (31Main.pdf p3.31).
type Chart struct {
	metadata *datasetMetadata
	params   datasetParams
	updates  int
	Features []Feature
}

// datasetMetadata mirrors the DSID field (S-57 Part 3 §7.3.1.1, table 7.4).
type datasetMetadata struct {
	rcnm int
	rcid int64
	expp int    // 1=New, 2=Revision
	intu int    // intended usage (navigational purpose 1-6)
	dsnm string // data set name
	edtn string // edition number
	updn string // update number
	uadt string // update application date YYYYMMDD
	isdt string // issue date YYYYMMDD
	sted string // S-57 edition
	prsp int    // product specification, 1=ENC
	psdn string
	pred string
	prof int // application profile, 1=EN, 2=ER, 3=DD
	agen int // producing agency
	comt string
}

// NewChart assembles a chart from already-built features. Metadata fields other
// than the dataset name are left empty.
func NewChart(datasetName string, features []Feature) *Chart {
	return &Chart{
		metadata: &datasetMetadata{dsnm: datasetName},
		params:   defaultDatasetParams(),
		Features: features,
	}
}

// DatasetName returns the chart's dataset name (cell identifier).
func (c *Chart) DatasetName() string {
	if c.metadata == nil {
		return ""
	}
	return c.metadata.dsnm
}

// Edition returns the chart's edition number.
func (c *Chart) Edition() string {
	if c.metadata == nil {
		return ""
	}
	return c.metadata.edtn
}

// UpdateNumber returns the update number after merging, "0" for a bare base cell.
func (c *Chart) UpdateNumber() string {
	if c.metadata == nil {
		return ""
	}
	return c.metadata.updn
}

// UpdateDate returns the update application date (YYYYMMDD).
func (c *Chart) UpdateDate() string {
	if c.metadata == nil {
		return ""
	}
	return c.metadata.uadt
}

// IssueDate returns the issue date (YYYYMMDD).
func (c *Chart) IssueDate() string {
	if c.metadata == nil {
		return ""
	}
	return c.metadata.isdt
}

// ProducingAgency returns the producing agency code.
func (c *Chart) ProducingAgency() int {
	if c.metadata == nil {
		return 0
	}
	return c.metadata.agen
}

// IntendedUsage returns the navigational purpose code (1 = Overview ... 6 = Berthing).
func (c *Chart) IntendedUsage() int {
	if c.metadata == nil {
		return 0
	}
	return c.metadata.intu
}

// UpdatesApplied returns how many update files were merged into the base cell.
func (c *Chart) UpdatesApplied() int {
	return c.updates
}

// CompilationScale returns the CSCL scale denominator from the DSPM record.
func (c *Chart) CompilationScale() int32 {
	return c.params.CSCL
}

// SoundingFactor returns SOMF, the divisor applied to SG3D depths.
func (c *Chart) SoundingFactor() int32 {
	return c.params.SOMF
}
