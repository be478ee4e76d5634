// Package submission assembles the local artifacts an SRA submission needs:
// the submission.xml document, a metadata TSV, and the file manifest handed
// to whatever uploader the lab uses. Nothing here touches the network.
package submission

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"

	"go.uber.org/zap"

	"github.com/omicslab/sra-engine/pkg/apperrors"
	"github.com/omicslab/sra-engine/pkg/config"
	"github.com/omicslab/sra-engine/pkg/models"
	"github.com/omicslab/sra-engine/pkg/tabular"
)

// Forward/reverse read markers in file names, for the read attribute.
var (
	readOneRe = regexp.MustCompile(`_R?1[_.]`)
	readTwoRe = regexp.MustCompile(`_R?2[_.]`)
)

// envColumns map project table columns onto BioSample attributes.
var envColumns = []string{"env_biome", "env_feature", "env_material"}

// Package lists the artifact paths BuildPackage wrote.
type Package struct {
	SubmissionXML string `json:"submission_xml"`
	MetadataTSV   string `json:"metadata_tsv"`
}

// Builder renders submission packages from validated project metadata.
type Builder struct {
	cfg    *config.Config
	logger *zap.Logger
}

// New builds a Builder.
func New(cfg *config.Config, logger *zap.Logger) *Builder {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Builder{
		cfg:    cfg,
		logger: logger.Named("submission"),
	}
}

type submissionXML struct {
	XMLName    xml.Name      `xml:"Submission"`
	BioProject bioProjectXML `xml:"BioProject"`
	BioSample  bioSampleXML  `xml:"BioSample"`
	SRA        sraXML        `xml:"SRA"`
}

type bioProjectXML struct {
	Accession string      `xml:"accession,attr,omitempty"`
	Project   *projectXML `xml:"Project,omitempty"`
}

type projectXML struct {
	Title       string `xml:"Title"`
	Description string `xml:"Description"`
}

type bioSampleXML struct {
	Attributes []attributeXML `xml:"Attributes>Attribute"`
}

type attributeXML struct {
	Name  string `xml:"name,attr"`
	Value string `xml:",chardata"`
}

type sraXML struct {
	Library  libraryXML  `xml:"LibraryDescriptor"`
	Platform platformXML `xml:"Platform"`
	Files    []fileXML   `xml:"Files>File"`
}

type libraryXML struct {
	Strategy  string `xml:"LIBRARY_STRATEGY"`
	Source    string `xml:"LIBRARY_SOURCE"`
	Selection string `xml:"LIBRARY_SELECTION"`
}

// platformXML wraps the platform-named element, e.g. <Platform><ILLUMINA>.
type platformXML struct {
	Type platformTypeXML
}

type platformTypeXML struct {
	XMLName xml.Name
	Model   string `xml:"INSTRUMENT_MODEL"`
}

type fileXML struct {
	Name string `xml:"name,attr"`
	Type string `xml:"type,attr"`
	Read string `xml:"read,attr,omitempty"`
}

// BuildPackage writes submission.xml and metadata.tsv under outDir, sourcing
// the project-level fields from the first row of the validated project table
// and one File entry per resolved data file. Returns the written paths.
func (b *Builder) BuildPackage(project *models.Table, files []string, outDir string) (*Package, error) {
	if project == nil || project.Len() == 0 {
		return nil, fmt.Errorf("project metadata: %w", apperrors.ErrEmptyTable)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", outDir, err)
	}

	doc := b.buildDocument(project, files)
	payload, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to render submission document: %w", err)
	}

	xmlPath := filepath.Join(outDir, "submission.xml")
	if err := os.WriteFile(xmlPath, append([]byte(xml.Header), payload...), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", xmlPath, err)
	}

	tsvPath := filepath.Join(outDir, "metadata.tsv")
	if err := tabular.Write(project, tsvPath); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", tsvPath, err)
	}

	b.logger.Info("submission package written",
		zap.String("submission_xml", xmlPath),
		zap.String("metadata_tsv", tsvPath),
		zap.Int("files", len(files)))
	return &Package{SubmissionXML: xmlPath, MetadataTSV: tsvPath}, nil
}

func (b *Builder) buildDocument(project *models.Table, files []string) submissionXML {
	get := func(col string) string { return project.Get(0, col) }

	doc := submissionXML{}

	if accession := get("bioproject_id"); accession != "" {
		doc.BioProject.Accession = accession
	} else {
		title := get("project_title")
		if title == "" {
			title = "Metagenomic Project"
		}
		doc.BioProject.Project = &projectXML{
			Title:       title,
			Description: get("project_description"),
		}
	}

	for _, col := range []string{"sample_source", "collection_date", "geo_loc_name", "lat_lon"} {
		if value := get(col); value != "" {
			doc.BioSample.Attributes = append(doc.BioSample.Attributes, attributeXML{Name: col, Value: value})
		}
	}
	for _, col := range envColumns {
		if value := get(col); value != "" {
			doc.BioSample.Attributes = append(doc.BioSample.Attributes, attributeXML{Name: col, Value: value})
		}
	}

	doc.SRA.Library = libraryXML{
		Strategy:  get("library_strategy"),
		Source:    get("library_source"),
		Selection: get("library_selection"),
	}

	platform := get("platform")
	if platform == "" {
		platform = b.cfg.DefaultFor("platform")
	}
	if platform == "" {
		platform = "ILLUMINA"
	}
	doc.SRA.Platform.Type = platformTypeXML{
		XMLName: xml.Name{Local: platform},
		Model:   get("instrument_model"),
	}

	filetype := get("filetype")
	if filetype == "" {
		filetype = "fastq"
	}
	for _, path := range files {
		entry := fileXML{
			Name: filepath.Base(path),
			Type: filetype,
		}
		switch name := filepath.Base(path); {
		case readOneRe.MatchString(name):
			entry.Read = "1"
		case readTwoRe.MatchString(name):
			entry.Read = "2"
		}
		doc.SRA.Files = append(doc.SRA.Files, entry)
	}
	return doc
}

// WriteManifest emits one path per line, deduplicated with first-seen order
// preserved. The manifest is the handoff contract to any uploader.
func WriteManifest(paths []string, w io.Writer) error {
	seen := make(map[string]struct{}, len(paths))
	for _, path := range paths {
		if _, dup := seen[path]; dup {
			continue
		}
		seen[path] = struct{}{}
		if _, err := fmt.Fprintln(w, path); err != nil {
			return fmt.Errorf("failed to write manifest: %w", err)
		}
	}
	return nil
}
