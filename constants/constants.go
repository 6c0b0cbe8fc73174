package constants

const (
	// Env variable names

	ENV_CONFIG          = "AIMETA_CONFIG"
	ENV_CIVITAI         = "AIMETA_CIVITAI"     // "1" / "true" enables Civitai lookups, "0" / "false" disables them
	ENV_CIVITAI_API     = "AIMETA_CIVITAI_API" // Civitai REST API base url
	ENV_CIVITAI_API_KEY = "AIMETA_CIVITAI_KEY" // optional Civitai API token

	DEFAULT_CIVITAI_API      = "https://civitai.com/api/v1"
	DEFAULT_CIVITAI_SITE     = "https://civitai.com"
	DEFAULT_CIVITAI_TIMEOUT  = "10s"
	DEFAULT_CIVITAI_RATE     = 5.0 // requests per second
	DEFAULT_CIVITAI_CACHE    = 256
	DEFAULT_THUMBNAIL_SIZE   = 0
	DEFAULT_JOBS             = 4
	DEFAULT_LOG_LEVEL        = "warn"
	DEFAULT_WATCH_INTERVAL   = 2
	DEFAULT_JPEG_QUALITY     = 92
	STRIPPED_FILENAME_SUFFIX = "_stripped"

	TIME_FORMAT = "2006-01-02T15:04:05Z"
	DATE_FORMAT = "2006-01-02"

	MIME_BINARY = "application/octet-stream"
	MIME_JPEG   = "image/jpeg"
	MIME_PNG    = "image/png"
	MIME_WEBP   = "image/webp"

	NULL = "null"

	// Output formats of parse command
	FORMAT_JSON = "json"
	FORMAT_YAML = "yaml"
	FORMAT_TOML = "toml"
	FORMAT_TEXT = "text"

	// Source tag of the NovelAI steganographic alpha channel candidate.
	SOURCE_NOVELAI_ALPHA = "NovelAI Alpha Channel"

	NO_METADATA_WARNING = "No metadata found"
)

// Generator dialects. One per record.
const (
	FORMAT_A1111      = "A1111"
	FORMAT_COMFYUI    = "ComfyUI"
	FORMAT_INVOKEAI   = "InvokeAI"
	FORMAT_NOVELAI    = "NovelAI"
	FORMAT_MIDJOURNEY = "Midjourney"
	FORMAT_UNKNOWN    = "Unknown"
)

// Lower-cased PNG text chunk keywords that may carry AI generation metadata
// or auxiliary image info.
var PngKeywords = []string{
	"parameters",
	"davant__batch_parameters",
	"description",
	"creation time",
	"author",
	"usercomment",
	"creatortool",
	"fooocus_scheme",
	"invokeai_metadata",
	"invokeai_graph",
	"comment",
	"title",
	"software",
	"source",
	"result",
	"prompt",
	"workflow",
	"generation_data",
	"generation_time",
	"camera_manufacturer",
	"image_description",
}

const HELP_TEMPLATE_FLAG = `The Go text template string. If the value starts with "@", ` +
	`it (the rest part after @) is treated as a filename, ` +
	`which contents will be used as template. ` +
	`All sprout functions are supported, see https://github.com/go-sprout/sprout`

const HELP_FORMAT_FLAG = `Output format: "` + FORMAT_JSON + `", "` + FORMAT_YAML + `", "` + FORMAT_TOML +
	`" or "` + FORMAT_TEXT + `" (human readable)`
