package hostrpc

import (
	"context"

	"github.com/breez/lnbind/bindings"
	"github.com/breez/lnbind/engine"
)

type BuilderServer interface {
	New(ctx context.Context, req *NewBuilderRequest) (*BuilderResponse, error)
	FromConfig(ctx context.Context, req *BuilderFromConfigRequest) (*BuilderResponse, error)
	SetEntropySeedPath(ctx context.Context, req *SetEntropySeedPathRequest) (*EmptyResponse, error)
	SetEntropySeedBytes(ctx context.Context, req *SetEntropySeedBytesRequest) (*EmptyResponse, error)
	SetEntropyBip39Mnemonic(ctx context.Context, req *SetEntropyBip39MnemonicRequest) (*EmptyResponse, error)
	SetEsploraServer(ctx context.Context, req *SetEsploraServerRequest) (*EmptyResponse, error)
	SetGossipSourceP2P(ctx context.Context, req *BuilderRequest) (*EmptyResponse, error)
	SetGossipSourceRGS(ctx context.Context, req *SetGossipSourceRGSRequest) (*EmptyResponse, error)
	SetStorageDirPath(ctx context.Context, req *SetStorageDirPathRequest) (*EmptyResponse, error)
	SetNetwork(ctx context.Context, req *SetNetworkRequest) (*EmptyResponse, error)
	SetListeningAddress(ctx context.Context, req *SetListeningAddressRequest) (*EmptyResponse, error)
	SetLogLevel(ctx context.Context, req *SetLogLevelRequest) (*EmptyResponse, error)
	SetDefaultCltvExpiryDelta(ctx context.Context, req *SetDefaultCltvExpiryDeltaRequest) (*EmptyResponse, error)
	SetTrustedPeers0Conf(ctx context.Context, req *SetTrustedPeers0ConfRequest) (*EmptyResponse, error)
	Build(ctx context.Context, req *BuilderRequest) (*NodeResponse, error)
}

type builderServer struct {
	registry *Registry
	factory  engine.Factory
}

type EmptyResponse struct{}

type NewBuilderRequest struct{}

type BuilderRequest struct {
	Builder string `json:"builder"`
}

type BuilderResponse struct {
	Builder string `json:"builder"`
}

type BuilderFromConfigRequest struct {
	Config *bindings.Config `json:"config"`
}

type SetEntropySeedPathRequest struct {
	Builder  string `json:"builder"`
	SeedPath string `json:"seed_path"`
}

type SetEntropySeedBytesRequest struct {
	Builder   string            `json:"builder"`
	SeedBytes bindings.HexBytes `json:"seed_bytes"`
}

type SetEntropyBip39MnemonicRequest struct {
	Builder    string  `json:"builder"`
	Mnemonic   string  `json:"mnemonic"`
	Passphrase *string `json:"passphrase"`
}

type SetEsploraServerRequest struct {
	Builder   string `json:"builder"`
	ServerURL string `json:"server_url"`
}

type SetGossipSourceRGSRequest struct {
	Builder      string `json:"builder"`
	RgsServerURL string `json:"rgs_server_url"`
}

type SetStorageDirPathRequest struct {
	Builder        string `json:"builder"`
	StorageDirPath string `json:"storage_dir_path"`
}

type SetNetworkRequest struct {
	Builder string           `json:"builder"`
	Network bindings.Network `json:"network"`
}

type SetListeningAddressRequest struct {
	Builder          string              `json:"builder"`
	ListeningAddress bindings.NetAddress `json:"listening_address"`
}

type SetLogLevelRequest struct {
	Builder  string            `json:"builder"`
	LogLevel bindings.LogLevel `json:"log_level"`
}

type SetDefaultCltvExpiryDeltaRequest struct {
	Builder                string `json:"builder"`
	DefaultCltvExpiryDelta uint32 `json:"default_cltv_expiry_delta"`
}

type SetTrustedPeers0ConfRequest struct {
	Builder           string               `json:"builder"`
	TrustedPeers0Conf []bindings.PublicKey `json:"trusted_peers_0conf"`
}

type NodeResponse struct {
	Node string `json:"node"`
}

func NewBuilderServer(registry *Registry, factory engine.Factory) BuilderServer {
	return &builderServer{
		registry: registry,
		factory:  factory,
	}
}

func (s *builderServer) set(id string, f func(*bindings.Builder) error) (*EmptyResponse, error) {
	if err := s.registry.WithBuilder(id, f); err != nil {
		return nil, err
	}
	return &EmptyResponse{}, nil
}

func (s *builderServer) New(
	ctx context.Context,
	req *NewBuilderRequest,
) (*BuilderResponse, error) {
	b := bindings.NewBuilder(s.factory)
	return &BuilderResponse{Builder: s.registry.AddBuilder(b)}, nil
}

func (s *builderServer) FromConfig(
	ctx context.Context,
	req *BuilderFromConfigRequest,
) (*BuilderResponse, error) {
	b, err := bindings.BuilderFromConfig(s.factory, req.Config)
	if err != nil {
		return nil, err
	}
	return &BuilderResponse{Builder: s.registry.AddBuilder(b)}, nil
}

func (s *builderServer) SetEntropySeedPath(
	ctx context.Context,
	req *SetEntropySeedPathRequest,
) (*EmptyResponse, error) {
	return s.set(req.Builder, func(b *bindings.Builder) error {
		return b.SetEntropySeedPath(req.SeedPath)
	})
}

func (s *builderServer) SetEntropySeedBytes(
	ctx context.Context,
	req *SetEntropySeedBytesRequest,
) (*EmptyResponse, error) {
	return s.set(req.Builder, func(b *bindings.Builder) error {
		return b.SetEntropySeedBytes(req.SeedBytes)
	})
}

func (s *builderServer) SetEntropyBip39Mnemonic(
	ctx context.Context,
	req *SetEntropyBip39MnemonicRequest,
) (*EmptyResponse, error) {
	return s.set(req.Builder, func(b *bindings.Builder) error {
		return b.SetEntropyBip39Mnemonic(req.Mnemonic, req.Passphrase)
	})
}

func (s *builderServer) SetEsploraServer(
	ctx context.Context,
	req *SetEsploraServerRequest,
) (*EmptyResponse, error) {
	return s.set(req.Builder, func(b *bindings.Builder) error {
		return b.SetEsploraServer(req.ServerURL)
	})
}

func (s *builderServer) SetGossipSourceP2P(
	ctx context.Context,
	req *BuilderRequest,
) (*EmptyResponse, error) {
	return s.set(req.Builder, func(b *bindings.Builder) error {
		return b.SetGossipSourceP2P()
	})
}

func (s *builderServer) SetGossipSourceRGS(
	ctx context.Context,
	req *SetGossipSourceRGSRequest,
) (*EmptyResponse, error) {
	return s.set(req.Builder, func(b *bindings.Builder) error {
		return b.SetGossipSourceRGS(req.RgsServerURL)
	})
}

func (s *builderServer) SetStorageDirPath(
	ctx context.Context,
	req *SetStorageDirPathRequest,
) (*EmptyResponse, error) {
	return s.set(req.Builder, func(b *bindings.Builder) error {
		return b.SetStorageDirPath(req.StorageDirPath)
	})
}

func (s *builderServer) SetNetwork(
	ctx context.Context,
	req *SetNetworkRequest,
) (*EmptyResponse, error) {
	return s.set(req.Builder, func(b *bindings.Builder) error {
		return b.SetNetwork(req.Network)
	})
}

func (s *builderServer) SetListeningAddress(
	ctx context.Context,
	req *SetListeningAddressRequest,
) (*EmptyResponse, error) {
	return s.set(req.Builder, func(b *bindings.Builder) error {
		return b.SetListeningAddress(req.ListeningAddress)
	})
}

func (s *builderServer) SetLogLevel(
	ctx context.Context,
	req *SetLogLevelRequest,
) (*EmptyResponse, error) {
	return s.set(req.Builder, func(b *bindings.Builder) error {
		return b.SetLogLevel(req.LogLevel)
	})
}

func (s *builderServer) SetDefaultCltvExpiryDelta(
	ctx context.Context,
	req *SetDefaultCltvExpiryDeltaRequest,
) (*EmptyResponse, error) {
	return s.set(req.Builder, func(b *bindings.Builder) error {
		return b.SetDefaultCltvExpiryDelta(req.DefaultCltvExpiryDelta)
	})
}

func (s *builderServer) SetTrustedPeers0Conf(
	ctx context.Context,
	req *SetTrustedPeers0ConfRequest,
) (*EmptyResponse, error) {
	return s.set(req.Builder, func(b *bindings.Builder) error {
		return b.SetTrustedPeers0Conf(req.TrustedPeers0Conf)
	})
}

func (s *builderServer) Build(
	ctx context.Context,
	req *BuilderRequest,
) (*NodeResponse, error) {
	var node *bindings.Node
	err := s.registry.WithBuilder(req.Builder, func(b *bindings.Builder) error {
		var err error
		node, err = b.Build()
		return err
	})
	if err != nil {
		return nil, err
	}
	return &NodeResponse{Node: s.registry.AddNode(node)}, nil
}

func RegisterBuilderServer(s ServiceRegistrar, b BuilderServer) {
	s.RegisterService(
		&ServiceDesc{
			ServiceName: "builder",
			HandlerType: (*BuilderServer)(nil),
			Methods: []MethodDesc{
				{
					MethodName: "builder.new",
					Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error) (interface{}, error) {
						in := new(NewBuilderRequest)
						if err := dec(in); err != nil {
							return nil, err
						}
						return srv.(BuilderServer).New(ctx, in)
					},
				},
				{
					MethodName: "builder.from_config",
					Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error) (interface{}, error) {
						in := new(BuilderFromConfigRequest)
						if err := dec(in); err != nil {
							return nil, err
						}
						return srv.(BuilderServer).FromConfig(ctx, in)
					},
				},
				{
					MethodName: "builder.set_entropy_seed_path",
					Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error) (interface{}, error) {
						in := new(SetEntropySeedPathRequest)
						if err := dec(in); err != nil {
							return nil, err
						}
						return srv.(BuilderServer).SetEntropySeedPath(ctx, in)
					},
				},
				{
					MethodName: "builder.set_entropy_seed_bytes",
					Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error) (interface{}, error) {
						in := new(SetEntropySeedBytesRequest)
						if err := dec(in); err != nil {
							return nil, err
						}
						return srv.(BuilderServer).SetEntropySeedBytes(ctx, in)
					},
				},
				{
					MethodName: "builder.set_entropy_bip39_mnemonic",
					Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error) (interface{}, error) {
						in := new(SetEntropyBip39MnemonicRequest)
						if err := dec(in); err != nil {
							return nil, err
						}
						return srv.(BuilderServer).SetEntropyBip39Mnemonic(ctx, in)
					},
				},
				{
					MethodName: "builder.set_esplora_server",
					Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error) (interface{}, error) {
						in := new(SetEsploraServerRequest)
						if err := dec(in); err != nil {
							return nil, err
						}
						return srv.(BuilderServer).SetEsploraServer(ctx, in)
					},
				},
				{
					MethodName: "builder.set_gossip_source_p2p",
					Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error) (interface{}, error) {
						in := new(BuilderRequest)
						if err := dec(in); err != nil {
							return nil, err
						}
						return srv.(BuilderServer).SetGossipSourceP2P(ctx, in)
					},
				},
				{
					MethodName: "builder.set_gossip_source_rgs",
					Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error) (interface{}, error) {
						in := new(SetGossipSourceRGSRequest)
						if err := dec(in); err != nil {
							return nil, err
						}
						return srv.(BuilderServer).SetGossipSourceRGS(ctx, in)
					},
				},
				{
					MethodName: "builder.set_storage_dir_path",
					Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error) (interface{}, error) {
						in := new(SetStorageDirPathRequest)
						if err := dec(in); err != nil {
							return nil, err
						}
						return srv.(BuilderServer).SetStorageDirPath(ctx, in)
					},
				},
				{
					MethodName: "builder.set_network",
					Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error) (interface{}, error) {
						in := new(SetNetworkRequest)
						if err := dec(in); err != nil {
							return nil, err
						}
						return srv.(BuilderServer).SetNetwork(ctx, in)
					},
				},
				{
					MethodName: "builder.set_listening_address",
					Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error) (interface{}, error) {
						in := new(SetListeningAddressRequest)
						if err := dec(in); err != nil {
							return nil, err
						}
						return srv.(BuilderServer).SetListeningAddress(ctx, in)
					},
				},
				{
					MethodName: "builder.set_log_level",
					Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error) (interface{}, error) {
						in := new(SetLogLevelRequest)
						if err := dec(in); err != nil {
							return nil, err
						}
						return srv.(BuilderServer).SetLogLevel(ctx, in)
					},
				},
				{
					MethodName: "builder.set_default_cltv_expiry_delta",
					Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error) (interface{}, error) {
						in := new(SetDefaultCltvExpiryDeltaRequest)
						if err := dec(in); err != nil {
							return nil, err
						}
						return srv.(BuilderServer).SetDefaultCltvExpiryDelta(ctx, in)
					},
				},
				{
					MethodName: "builder.set_trusted_peers_0conf",
					Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error) (interface{}, error) {
						in := new(SetTrustedPeers0ConfRequest)
						if err := dec(in); err != nil {
							return nil, err
						}
						return srv.(BuilderServer).SetTrustedPeers0Conf(ctx, in)
					},
				},
				{
					MethodName: "builder.build",
					Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error) (interface{}, error) {
						in := new(BuilderRequest)
						if err := dec(in); err != nil {
							return nil, err
						}
						return srv.(BuilderServer).Build(ctx, in)
					},
				},
			},
		},
		b,
	)
}
