package all

import (
	_ "github.com/sagan/aimeta/cmd/comfyui"
	_ "github.com/sagan/aimeta/cmd/comfyui/parsemeta"
	_ "github.com/sagan/aimeta/cmd/diff"
	_ "github.com/sagan/aimeta/cmd/index"
	_ "github.com/sagan/aimeta/cmd/parse"
	_ "github.com/sagan/aimeta/cmd/resolve"
	_ "github.com/sagan/aimeta/cmd/schema"
	_ "github.com/sagan/aimeta/cmd/strip"
	_ "github.com/sagan/aimeta/cmd/watch"
)
