package app

// Command はeduassistバイナリのサブコマンド。
type Command string

const (
	// CommandServe はBFFのHTTPサーバーを起動する。
	CommandServe Command = "serve"
	// CommandMigrate は埋め込みマイグレーションを適用して終了する。
	CommandMigrate Command = "migrate"
	// CommandHealthcheck はローカルの/healthを叩いて終了コードで結果を返す。
	// distrolessイメージにはcurlが無いため、DockerのHEALTHCHECKから使う。
	CommandHealthcheck Command = "healthcheck"
)

var commands = map[string]Command{
	string(CommandServe):       CommandServe,
	string(CommandMigrate):     CommandMigrate,
	string(CommandHealthcheck): CommandHealthcheck,
}

// ParseCommand は先頭の引数をサブコマンドとして解釈する。
// 未指定や未知の値はserveとして扱い、2番目の戻り値でそれを区別する。
func ParseCommand(args []string) (Command, bool) {
	if len(args) == 0 {
		return CommandServe, true
	}
	cmd, ok := commands[args[0]]
	if !ok {
		return CommandServe, false
	}
	return cmd, true
}
