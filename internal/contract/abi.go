package contract

// PrismABI is the ABI of the deployed Prism publishing contract, limited to
// the functions this client uses.
const PrismABI = `[
  {"type":"function","name":"listAllArticles","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256[]"}]},
  {"type":"function","name":"getArticle","stateMutability":"view","inputs":[{"name":"tokenId","type":"uint256"}],"outputs":[{"name":"title","type":"string"},{"name":"originalAuthor","type":"address"},{"name":"timestamp","type":"uint256"},{"name":"mintPrice","type":"uint256"},{"name":"parentTokenId","type":"uint256"},{"name":"tags","type":"string[]"}]},
  {"type":"function","name":"ownerOf","stateMutability":"view","inputs":[{"name":"tokenId","type":"uint256"}],"outputs":[{"name":"","type":"address"}]},
  {"type":"function","name":"tokenURI","stateMutability":"view","inputs":[{"name":"tokenId","type":"uint256"}],"outputs":[{"name":"","type":"string"}]},
  {"type":"function","name":"getMintingChain","stateMutability":"view","inputs":[{"name":"tokenId","type":"uint256"}],"outputs":[{"name":"","type":"uint256[]"}]},
  {"type":"function","name":"createArticle","stateMutability":"nonpayable","inputs":[{"name":"title","type":"string"},{"name":"contentRef","type":"string"},{"name":"mintPrice","type":"uint256"},{"name":"tags","type":"string[]"}],"outputs":[]},
  {"type":"function","name":"mintArticle","stateMutability":"payable","inputs":[{"name":"tokenId","type":"uint256"}],"outputs":[]}
]`
