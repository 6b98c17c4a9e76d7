package result

// ColorSeparator joins selected color names into one CSV field.
const ColorSeparator = "|"

// Header is written once at the top of every participant file.
var Header = []string{"image_name", "folder", "segmentation_label", "selected_colors"}

// Row is one labelling decision.
type Row struct {
	ImageName         string   `json:"image_name"`
	Folder            string   `json:"folder,omitempty"`
	SegmentationLabel int      `json:"segmentation_label"`
	SelectedColors    []string `json:"selected_colors"`
}
