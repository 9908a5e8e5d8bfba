// Command nir inspects and manages serialized shader blobs.
//
// Usage:
//
//	nir dump shader.nir           # print the IR listing of a blob
//	nir canon -o out.nir in.nir   # rewrite a blob to canonical bytes
//	nir cache stats               # show shader cache usage
//	nir cache clear               # empty the shader cache
package main

import "os"

func main() {
	if err := execute(); err != nil {
		os.Exit(1)
	}
}
