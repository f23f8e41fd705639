//go:build !govips || !cgo

package convert

const backendName = "stdlib"

func Startup() error {
	return nil
}

func Shutdown() {}

func newEncoder() (Encoder, error) {
	return stdlibEncoder{}, nil
}
