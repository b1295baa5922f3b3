package config

// DefaultMirrors 默认镜像加速器列表
// 镜像源发现不在本服务范围内，列表为静态配置，可用 MCHECK_MIRRORS 覆盖
var DefaultMirrors = []string{
	"https://docker.1ms.run",
	"https://docker.1panel.live",
	"https://docker.m.ixdev.cn",
	"https://hub.rat.dev",
	"https://docker.xuanyuan.me",
	"https://dockerproxy.net",
	"https://docker.hlmirror.com",
	"https://hub1.nat.tf",
	"https://hub2.nat.tf",
	"https://hub3.nat.tf",
	"https://hub4.nat.tf",
	"https://docker.m.daocloud.io",
	"https://docker.kejilion.pro",
	"https://hub.1panel.dev",
	"https://dockerproxy.cool",
	"https://proxy.vvvv.ee",
	"https://dockerproxy.com",
	"https://docker.mirrors.ustc.edu.cn",
	"https://docker.nju.edu.cn",
}
