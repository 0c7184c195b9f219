package format

// Signature and endianness markers, verbatim ASCII per spec.md §6.1.
const (
	Signature        = "blsa"
	EndiannessLittle = "lend"
	EndiannessBig    = "bend"
)

// Block and dictionary markers. Every marker is a verbatim 4-byte ASCII
// tag; the reader fails with a FormatError on any missing or wrong one.
const (
	markerDictStart = "dict"
	markerDictEnd   = "tcid"

	markerTableStart = "tabl"
	markerTableEnd   = "lbat"

	markerTreeStart = "tree"
	markerTreeEnd   = "eert"

	markerEnsembleStart = "frst"
	markerEnsembleEnd   = "tsrf"
)

// File format version. The reader accepts any minor version >= the
// writer's and rejects any major version mismatch.
const (
	FileMajorVersion = 1
	FileMinorVersion = 0
)

// Dictionary keys used by the various header dictionaries.
const (
	keyFileMajorVersion   = "file_major_version"
	keyFileMinorVersion   = "file_minor_version"
	keyCreatorName        = "creator_name"
	keyCreatorMajorVer    = "creator_major_version"
	keyCreatorMinorVer    = "creator_minor_version"
	keyCreatorPatchVer    = "creator_patch_version"
	keyRowCount           = "row_count"
	keyColumnCount        = "column_count"
	keyScalarTypeID       = "scalar_type_id"
	keyClassCount         = "class_count"
	keyFeatureCount       = "feature_count"
	keyFeatureTypeID      = "feature_type_id"
)
